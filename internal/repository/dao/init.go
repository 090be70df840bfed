package dao

import "gorm.io/gorm"

// uniqueActiveOrderIndex backstops the single-active-order invariant at the
// store level: the service checks before insert, the index closes the race
// between two concurrent creates for the same customer.
const uniqueActiveOrderIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS uix_orders_one_active
ON orders (venue_id, customer_name)
WHERE status IN ('new', 'accepted', 'ready')
`

func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Venue{},
		&Drink{},
		&Order{},
	); err != nil {
		return err
	}

	return db.Exec(uniqueActiveOrderIndex).Error
}
