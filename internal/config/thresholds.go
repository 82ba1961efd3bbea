package config

// Thresholds are the process-wide qualifying constants of a run. They are
// read-only while a run is in progress and passed explicitly to staging and
// mart builders.
type Thresholds struct {
	// MinVotes is the exclusive vote floor for CleanRating.
	MinVotes int64 `json:"min_votes" toml:"min_votes"`
	// MinReleaseYear is the exclusive start-year floor for CleanTitle.
	MinReleaseYear int `json:"min_release_year" toml:"min_release_year"`

	// MinBirthYear and MaxBirthYear bound CleanPerson.birth_year (inclusive).
	MinBirthYear int `json:"min_birth_year" toml:"min_birth_year"`
	MaxBirthYear int `json:"max_birth_year" toml:"max_birth_year"`

	// CurrentYear is used for the age of living people. Zero means "resolve
	// from the clock when the pipeline file is loaded".
	CurrentYear int `json:"current_year" toml:"current_year"`

	// MaxActors caps the billed actors embedded in each movie.
	MaxActors int `json:"max_actors" toml:"max_actors"`

	MovieTiers     MovieTiers   `json:"movie_tiers" toml:"movie_tiers"`
	PersonTiers    PersonTiers  `json:"person_tiers" toml:"person_tiers"`
	DirectorStages CareerStages `json:"director_stages" toml:"director_stages"`
	ActorStages    CareerStages `json:"actor_stages" toml:"actor_stages"`
	RoleTypes      RoleTypes    `json:"role_types" toml:"role_types"`
}

// MovieTiers are the lower bounds (inclusive) of the movie rating_category
// buckets. Anything below Average is "Poor".
type MovieTiers struct {
	Excellent float64 `json:"excellent" toml:"excellent"`
	VeryGood  float64 `json:"very_good" toml:"very_good"`
	Good      float64 `json:"good" toml:"good"`
	Average   float64 `json:"average" toml:"average"`
}

// PersonTiers are the lower bounds (inclusive) of a person's rating tier.
// Anything below Good is "Average".
type PersonTiers struct {
	Elite     float64 `json:"elite" toml:"elite"`
	Excellent float64 `json:"excellent" toml:"excellent"`
	Good      float64 `json:"good" toml:"good"`
}

// CareerStages are total_movies lower bounds. Below Emerging is "Newcomer".
type CareerStages struct {
	Prolific    int `json:"prolific" toml:"prolific"`
	Established int `json:"established" toml:"established"`
	Emerging    int `json:"emerging" toml:"emerging"`
}

// RoleTypes are lead_role_percentage lower bounds. Below Mixed is
// "Supporting".
type RoleTypes struct {
	Leading float64 `json:"leading" toml:"leading"`
	Mixed   float64 `json:"mixed" toml:"mixed"`
}

// DefaultThresholds returns the stock qualifying constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinVotes:       10000,
		MinReleaseYear: 1950,
		MinBirthYear:   1800,
		MaxBirthYear:   2020,
		MaxActors:      10,
		MovieTiers:     MovieTiers{Excellent: 8.5, VeryGood: 7.5, Good: 6.5, Average: 5.5},
		PersonTiers:    PersonTiers{Elite: 8.0, Excellent: 7.0, Good: 6.0},
		DirectorStages: CareerStages{Prolific: 20, Established: 10, Emerging: 5},
		ActorStages:    CareerStages{Prolific: 30, Established: 15, Emerging: 5},
		RoleTypes:      RoleTypes{Leading: 50, Mixed: 25},
	}
}
