package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// Seat assignments. Also one-to-one with users: reassigning a seat
// updates the existing record instead of adding a second ticket.
func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("tickets")

		collection.Fields.Add(&core.RelationField{
			Name:          "user",
			Required:      true,
			CollectionId:  users.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})

		collection.Fields.Add(&core.SelectField{
			Name:      "table_type",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"Standard", "Premium", "VIP"},
		})

		collection.Fields.Add(&core.TextField{
			Name:     "table_number",
			Required: true,
			Max:      20,
		})

		collection.Fields.Add(&core.TextField{
			Name:     "seat_number",
			Required: true,
			Max:      20,
		})

		collection.Fields.Add(&core.AutodateField{
			Name:     "created",
			OnCreate: true,
		})

		collection.AddIndex("idx_tickets_user", true, "user", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
