package model

import "time"

// Student is an enrolled student identified by a unique RA and CPF.
type Student struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;index"`
	Email     string    `json:"email" gorm:"size:255;not null"`
	RA        string    `json:"ra" gorm:"column:ra;size:20;not null;uniqueIndex"`
	CPF       string    `json:"cpf" gorm:"column:cpf;size:11;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name used by migrations.
func (Student) TableName() string {
	return "students"
}

// StudentPatch carries the fields of a partial update. Nil fields are left untouched.
type StudentPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	RA    *string `json:"ra,omitempty"`
	CPF   *string `json:"cpf,omitempty"`
}

// Apply returns a copy of s with the non-nil patch fields applied.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.RA != nil {
		s.RA = *p.RA
	}
	if p.CPF != nil {
		s.CPF = *p.CPF
	}
	return s
}

// Columns returns the column values of the non-nil patch fields.
func (p StudentPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.RA != nil {
		cols["ra"] = *p.RA
	}
	if p.CPF != nil {
		cols["cpf"] = *p.CPF
	}
	return cols
}
