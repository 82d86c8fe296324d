package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a client-side UUID when a row arrives without one. The
// goose-managed Postgres schema also carries gen_random_uuid() column
// defaults; the hooks keep AutoMigrate-built SQLite databases behaving the
// same way.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *Company) BeforeCreate(*gorm.DB) error           { ensureID(&c.ID); return nil }
func (l *Location) BeforeCreate(*gorm.DB) error          { ensureID(&l.ID); return nil }
func (u *User) BeforeCreate(*gorm.DB) error              { ensureID(&u.ID); return nil }
func (e *Employee) BeforeCreate(*gorm.DB) error          { ensureID(&e.ID); return nil }
func (m *CompanyMembership) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error          { ensureID(&c.ID); return nil }
func (s *Supplier) BeforeCreate(*gorm.DB) error          { ensureID(&s.ID); return nil }
func (i *Item) BeforeCreate(*gorm.DB) error              { ensureID(&i.ID); return nil }
func (a *Allocation) BeforeCreate(*gorm.DB) error        { ensureID(&a.ID); return nil }
func (r *ItemRequest) BeforeCreate(*gorm.DB) error       { ensureID(&r.ID); return nil }
func (r *ItemReturn) BeforeCreate(*gorm.DB) error        { ensureID(&r.ID); return nil }
func (o *PurchaseOrder) BeforeCreate(*gorm.DB) error     { ensureID(&o.ID); return nil }
func (l *ItemLog) BeforeCreate(*gorm.DB) error           { ensureID(&l.ID); return nil }
func (m *Message) BeforeCreate(*gorm.DB) error           { ensureID(&m.ID); return nil }
