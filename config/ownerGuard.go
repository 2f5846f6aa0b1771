package config

import (
	"context"
	"strings"

	"github.com/mmdatafocus/invest_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OwnerGuardPlugin scopes queries/updates/deletes to the request's user_id
// when the model has a user_id column.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include user_id manually.
// - Requests without a user in context (tools, migrations) are not scoped.
type OwnerGuardPlugin struct{}

func NewOwnerGuardPlugin() *OwnerGuardPlugin { return &OwnerGuardPlugin{} }

func (p *OwnerGuardPlugin) Name() string { return "owner_guard" }

func (p *OwnerGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("owner_guard:query", ownerGuardCallback); err != nil {
		return err
	}
	// Row (Scan/Pluck)
	if err := db.Callback().Row().Before("gorm:row").Register("owner_guard:row", ownerGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("owner_guard:update", ownerGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("owner_guard:delete", ownerGuardCallback); err != nil {
		return err
	}
	return nil
}

func ownerGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	userID := userIdFromContext(ctx)
	if userID <= 0 {
		return
	}

	if db.Statement.Schema == nil {
		return
	}
	hasUserID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "user_id") {
			hasUserID = true
			break
		}
	}
	if !hasUserID {
		return
	}

	// Don't duplicate an explicit owner filter.
	if whereHasUserID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "user_id"},
				Value:  userID,
			},
		},
	})
}

func userIdFromContext(ctx context.Context) int {
	if v, ok := appctx.GetInt(ctx, appctx.ContextKeyUserId); ok {
		return v
	}
	return 0
}

func whereHasUserID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasUserID(e) {
			return true
		}
	}
	return false
}

func exprHasUserID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsUserID(v.Column)
	case clause.Neq:
		return colIsUserID(v.Column)
	case clause.IN:
		return colIsUserID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasUserID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasUserID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "user_id")
	default:
		return false
	}
}

func colIsUserID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "user_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "user_id")
	default:
		return false
	}
}
