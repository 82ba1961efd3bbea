// Package model holds the typed entities of the three layers: raw extracts,
// staging rows and the mart tables. Nil pointers mean "absent".
package model

// RawPerson is one row of name.basics.
type RawPerson struct {
	ID          string
	Name        string
	BirthYear   *int
	DeathYear   *int
	Professions []string
	KnownTitles []string
}

// RawTitle is one row of title.basics.
type RawTitle struct {
	ID             string
	Title          string
	OriginalTitle  string
	Type           string
	IsAdult        *bool
	RuntimeMinutes *int
	StartYear      *int
	Genres         []string
}

// RawRating is one row of title.ratings.
type RawRating struct {
	ID            string
	AverageRating *float64
	NumVotes      *int64
}

// RawCrewLink is one row of title.crew.
type RawCrewLink struct {
	TitleID     string
	DirectorIDs []string
	WriterIDs   []string
}

// RawCastLink is one row of title.principals.
type RawCastLink struct {
	TitleID      string
	PersonID     string
	Category     string
	BillingOrder *int
	Characters   []string
}

// CleanPerson is a person with a plausible birth year and known work.
type CleanPerson struct {
	ID          string
	Name        string
	BirthYear   int
	DeathYear   *int
	Professions []string
	KnownTitles []string
}

// CleanTitle is a non-adult feature film released after the year floor.
type CleanTitle struct {
	ID             string
	Title          string
	OriginalTitle  string
	RuntimeMinutes *int
	StartYear      int
	Genres         []string
}

// CleanRating is a rating with enough votes to be meaningful.
type CleanRating struct {
	ID            string
	AverageRating float64
	NumVotes      int64
}

// DirectorCredit is one movie x director pair. Person is nil when the
// director did not survive person cleaning.
type DirectorCredit struct {
	MovieID    string
	DirectorID string
	Person     *CleanPerson
}

// ActorCredit is one acting credit. Gender is "male" or "female" and empty
// when the category carries no gender.
type ActorCredit struct {
	MovieID      string
	PersonID     string
	BillingOrder *int
	Characters   []string
	Gender       string
	Person       *CleanPerson
}

// DirectorRef is a director embedded in a Movie.
type DirectorRef struct {
	ID        string
	Name      string
	BirthYear *int
	DeathYear *int
}

// ActorRef is a billed actor embedded in a Movie.
type ActorRef struct {
	ID           string
	Name         string
	BirthYear    *int
	DeathYear    *int
	Characters   []string
	Gender       *string
	BillingOrder *int
}

// Movie is the fact row. Directors are ordered by name, actors by billing.
type Movie struct {
	MovieID        string
	Title          string
	OriginalTitle  string
	RuntimeMinutes *int
	ReleaseYear    int
	Genres         []string
	AverageRating  float64
	NumVotes       int64
	RatingCategory string
	Directors      []DirectorRef
	Actors         []ActorRef
	DirectorCount  int
	ActorCount     int
}

// PersonDimension carries the columns shared by both person dimensions.
type PersonDimension struct {
	PersonID        string
	Name            string
	BirthYear       *int
	DeathYear       *int
	Profession      []string
	KnownForTitles  []string
	Age             *int
	TotalMovies     int
	AvgMovieRating  float64
	TotalVotes      int64
	FirstMovieYear  int
	LatestMovieYear int
	CareerSpanYears int
	BestMovieRating float64
	BestMovieTitle  string
	BestMovieID     string
	BestMovieYear   int
	Tier            string
	CareerStage     string
}

// ActorDimension is one row of dim_actors.
type ActorDimension struct {
	PersonDimension
	Gender             *string
	LeadRoleCount      int
	LeadRolePercentage float64
	RoleType           string
}

// DirectorDimension is one row of dim_directors.
type DirectorDimension struct {
	PersonDimension
}
