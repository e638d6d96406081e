package model

// Animal is one catalogued image. IDs are assigned by the store on insert;
// rows are never mutated or deleted, recycling only re-references them.
// Within a category no two animals share a URL.
type Animal struct {
	ID   int64    `json:"id"`
	URL  string   `json:"url"`
	Type Category `json:"type"`
}

// BacklogEntry marks one animal as pending comparison. For a given category
// the set of animal ids in the backlog never contains duplicates.
type BacklogEntry struct {
	ID       int64    `json:"id"`
	AnimalID int64    `json:"animal_id"`
	Type     Category `json:"type"`
}

// AnimalInBacklog joins a backlog entry with its animal for the read path.
type AnimalInBacklog struct {
	BacklogID int64  `json:"backlog_id"`
	Animal    Animal `json:"animal"`
}

// Pair is the next two animals to compare, oldest-queued first.
type Pair struct {
	First  AnimalInBacklog `json:"first"`
	Second AnimalInBacklog `json:"second"`
}

// Comparison is the durable record of one completed comparison.
// Append-only; removable only through the explicit review delete.
type Comparison struct {
	ID         int64  `json:"id"`
	Winner     int64  `json:"winner"`
	Loser      int64  `json:"loser"`
	ComparedAt string `json:"compared_at"`
}

// FavouriteAnimal is a read-side aggregate: an animal with its win count.
type FavouriteAnimal struct {
	Animal       Animal `json:"animal"`
	Wins         int    `json:"wins"`
	LastCompared string `json:"last_compared"`
}

// ComparisonRecord is a comparison resolved against both animals,
// as shown on the review screen.
type ComparisonRecord struct {
	ID         int64  `json:"id"`
	Winner     Animal `json:"winner"`
	Loser      Animal `json:"loser"`
	ComparedAt string `json:"compared_at"`
}
