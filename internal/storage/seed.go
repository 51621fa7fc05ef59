package storage

import "expensetracker/internal/core"

// SeedView is a starter view with its category names.
type SeedView struct {
	Name       string
	Categories []string
}

// StarterViews is what a fresh owner starts with.
func StarterViews() []SeedView {
	return []SeedView{
		{Name: "Home", Categories: []string{"Misc", "Grocery", "Milk"}},
		{Name: "Personal", Categories: []string{"Misc", "Eating Out", "Petrol"}},
	}
}

// BuildSeed expands the starter views into records, drawing ids from newID.
func BuildSeed(newID func() string) ([]core.View, []core.Category) {
	var views []core.View
	var cats []core.Category
	for _, sv := range StarterViews() {
		v := core.View{ID: newID(), Name: sv.Name}
		views = append(views, v)
		for _, name := range sv.Categories {
			cats = append(cats, core.Category{ID: newID(), ViewID: v.ID, Name: name})
		}
	}
	return views, cats
}
