package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// One payment record per user, created at registration and reviewed by
// admins. The unique index on user enforces the one-to-one shape.
func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("payments")

		collection.Fields.Add(&core.RelationField{
			Name:          "user",
			Required:      true,
			CollectionId:  users.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})

		collection.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"pending", "confirmed", "rejected"},
		})

		collection.Fields.Add(&core.FileField{
			Name:      "receipt",
			MaxSelect: 1,
			MaxSize:   10 << 20,
			MimeTypes: []string{"image/png", "image/jpeg", "image/webp", "application/pdf"},
		})

		collection.Fields.Add(&core.URLField{
			Name: "receipt_url",
		})

		collection.Fields.Add(&core.AutodateField{
			Name:     "created",
			OnCreate: true,
		})

		collection.Fields.Add(&core.AutodateField{
			Name:     "updated",
			OnCreate: true,
			OnUpdate: true,
		})

		collection.AddIndex("idx_payments_user", true, "user", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("payments")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
