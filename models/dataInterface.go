package models

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

// key
func (g InvestGroup) GetId() int {
	return g.ID
}

func (g InvestGroup) GetDefault(id int) Data {
	return InvestGroup{ID: id}
}

func (u InvestUnit) GetId() int {
	return u.ID
}

func (u InvestUnit) GetDefault(id int) Data {
	return InvestUnit{ID: id}
}
