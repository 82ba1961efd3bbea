package mart

import (
	"moviemart/internal/model"
	"moviemart/internal/schema"
)

// Mart table names.
const (
	TableMovies    = "movies"
	TableActors    = "dim_actors"
	TableDirectors = "dim_directors"
)

var directorRefColumns = []schema.Column{
	{Name: "id", Kind: schema.String, Description: "person id (nconst)"},
	{Name: "name", Kind: schema.String},
	{Name: "birth_year", Kind: schema.Int, Nullable: true},
	{Name: "death_year", Kind: schema.Int, Nullable: true},
}

var actorRefColumns = []schema.Column{
	{Name: "id", Kind: schema.String, Description: "person id (nconst)"},
	{Name: "name", Kind: schema.String},
	{Name: "birth_year", Kind: schema.Int, Nullable: true},
	{Name: "death_year", Kind: schema.Int, Nullable: true},
	{Name: "characters", Kind: schema.String, Repeated: true, Description: "characters played"},
	{Name: "gender", Kind: schema.String, Nullable: true, Description: "male or female"},
	{Name: "billing_order", Kind: schema.Int, Nullable: true, Description: "position in the original credits"},
}

// MovieColumns is the movies fact contract.
var MovieColumns = []schema.Column{
	{Name: "movie_id", Kind: schema.String, Description: "title id (tconst)"},
	{Name: "title", Kind: schema.String, Description: "primary title"},
	{Name: "original_title", Kind: schema.String, Nullable: true, Description: "title in the original language"},
	{Name: "runtime_minutes", Kind: schema.Int, Nullable: true},
	{Name: "release_year", Kind: schema.Int},
	{Name: "genres", Kind: schema.String, Repeated: true, Description: "up to three genres"},
	{Name: "average_rating", Kind: schema.Float, Description: "weighted average of user ratings, 0-10"},
	{Name: "num_votes", Kind: schema.Int},
	{Name: "rating_category", Kind: schema.String, Description: "Excellent, Very Good, Good, Average or Poor"},
	{Name: "directors", Kind: schema.Record, Repeated: true, Fields: directorRefColumns, Description: "ordered by name"},
	{Name: "actors", Kind: schema.Record, Repeated: true, Fields: actorRefColumns, Description: "ordered by billing, at most 10"},
	{Name: "director_count", Kind: schema.Int},
	{Name: "actor_count", Kind: schema.Int},
}

var personColumns = []schema.Column{
	{Name: "person_id", Kind: schema.String, Description: "person id (nconst)"},
	{Name: "name", Kind: schema.String},
	{Name: "birth_year", Kind: schema.Int, Nullable: true},
	{Name: "death_year", Kind: schema.Int, Nullable: true},
	{Name: "profession", Kind: schema.String, Repeated: true, Description: "top professions"},
	{Name: "known_for_titles", Kind: schema.String, Repeated: true, Description: "title ids the person is known for"},
}

var statsColumns = []schema.Column{
	{Name: "age", Kind: schema.Int, Nullable: true, Description: "age at death, or as of the build year"},
	{Name: "total_movies", Kind: schema.Int, Description: "distinct movies in the fact table"},
	{Name: "avg_movie_rating", Kind: schema.Float, Description: "mean rating, 2 decimals"},
	{Name: "total_votes", Kind: schema.Int},
	{Name: "first_movie_year", Kind: schema.Int},
	{Name: "latest_movie_year", Kind: schema.Int},
	{Name: "career_span_years", Kind: schema.Int},
	{Name: "best_movie_rating", Kind: schema.Float},
	{Name: "best_movie_title", Kind: schema.String},
	{Name: "best_movie_id", Kind: schema.String, Description: "highest rated, then most voted, then lowest id"},
	{Name: "best_movie_year", Kind: schema.Int},
}

// ActorColumns is the dim_actors contract.
var ActorColumns = concat(
	personColumns,
	[]schema.Column{{Name: "gender", Kind: schema.String, Nullable: true}},
	statsColumns,
	[]schema.Column{
		{Name: "tier", Kind: schema.String, Description: "Elite, Excellent, Good or Average"},
		{Name: "career_stage", Kind: schema.String, Description: "Prolific, Established, Emerging or Newcomer"},
		{Name: "lead_role_count", Kind: schema.Int, Description: "movies billed first"},
		{Name: "lead_role_percentage", Kind: schema.Float, Description: "lead roles per appearance x 100, 1 decimal"},
		{Name: "role_type", Kind: schema.String, Description: "Leading, Mixed or Supporting"},
	},
)

// DirectorColumns is the dim_directors contract.
var DirectorColumns = concat(
	personColumns,
	statsColumns,
	[]schema.Column{
		{Name: "tier", Kind: schema.String, Description: "Elite, Excellent, Good or Average"},
		{Name: "career_stage", Kind: schema.String, Description: "Prolific, Established, Emerging or Newcomer"},
	},
)

func concat(parts ...[]schema.Column) []schema.Column {
	var out []schema.Column
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Schemas returns the three mart tables without rows.
func Schemas() []schema.Table {
	return []schema.Table{
		{Name: TableMovies, Description: "one row per rated movie with embedded directors and actors", Columns: MovieColumns},
		{Name: TableActors, Description: "one row per actor appearing in movies", Columns: ActorColumns},
		{Name: TableDirectors, Description: "one row per director appearing in movies", Columns: DirectorColumns},
	}
}

// MoviesTable converts the fact rows.
func MoviesTable(movies []model.Movie) schema.Table {
	t := Schemas()[0]
	t.Rows = make([]schema.Row, 0, len(movies))
	for _, m := range movies {
		directors := make([]schema.Row, 0, len(m.Directors))
		for _, d := range m.Directors {
			directors = append(directors, schema.Row{d.ID, d.Name, intVal(d.BirthYear), intVal(d.DeathYear)})
		}
		actors := make([]schema.Row, 0, len(m.Actors))
		for _, a := range m.Actors {
			actors = append(actors, schema.Row{
				a.ID, a.Name, intVal(a.BirthYear), intVal(a.DeathYear),
				strs(a.Characters), strVal(a.Gender), intVal(a.BillingOrder),
			})
		}
		t.Rows = append(t.Rows, schema.Row{
			m.MovieID, m.Title, optString(m.OriginalTitle), intVal(m.RuntimeMinutes),
			int64(m.ReleaseYear), strs(m.Genres), m.AverageRating, m.NumVotes,
			m.RatingCategory, directors, actors,
			int64(m.DirectorCount), int64(m.ActorCount),
		})
	}
	return t
}

// ActorsTable converts dim_actors rows.
func ActorsTable(actors []model.ActorDimension) schema.Table {
	t := Schemas()[1]
	t.Rows = make([]schema.Row, 0, len(actors))
	for _, a := range actors {
		row := personValues(a.PersonDimension)
		row = append(row, strVal(a.Gender))
		row = append(row, statsValues(a.PersonDimension)...)
		row = append(row,
			a.Tier, a.CareerStage,
			int64(a.LeadRoleCount), a.LeadRolePercentage, a.RoleType,
		)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DirectorsTable converts dim_directors rows.
func DirectorsTable(directors []model.DirectorDimension) schema.Table {
	t := Schemas()[2]
	t.Rows = make([]schema.Row, 0, len(directors))
	for _, d := range directors {
		row := personValues(d.PersonDimension)
		row = append(row, statsValues(d.PersonDimension)...)
		row = append(row, d.Tier, d.CareerStage)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func personValues(p model.PersonDimension) schema.Row {
	return schema.Row{
		p.PersonID, p.Name, intVal(p.BirthYear), intVal(p.DeathYear),
		strs(p.Profession), strs(p.KnownForTitles),
	}
}

func statsValues(p model.PersonDimension) schema.Row {
	return schema.Row{
		intVal(p.Age), int64(p.TotalMovies), p.AvgMovieRating, p.TotalVotes,
		int64(p.FirstMovieYear), int64(p.LatestMovieYear), int64(p.CareerSpanYears),
		p.BestMovieRating, p.BestMovieTitle, p.BestMovieID, int64(p.BestMovieYear),
	}
}

func intVal(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func strVal(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// strs turns a nil slice into an untyped nil.
func strs(s []string) any {
	if s == nil {
		return nil
	}
	return s
}
