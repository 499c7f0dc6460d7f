package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// Extends the built-in users auth collection with the registration
// fields: display name, optional matric number and a role selector.
func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		users.Fields.Add(&core.TextField{
			Name:     "name",
			Required: true,
			Max:      120,
		})

		users.Fields.Add(&core.TextField{
			Name: "matric_number",
			Max:  60,
		})

		users.Fields.Add(&core.SelectField{
			Name:      "role",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"user", "admin"},
		})

		return app.Save(users)
	}, func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		users.Fields.RemoveByName("name")
		users.Fields.RemoveByName("matric_number")
		users.Fields.RemoveByName("role")

		return app.Save(users)
	})
}
