package mart

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviemart/internal/config"
	"moviemart/internal/model"
	"moviemart/internal/schema"
	"moviemart/internal/staging"
)

func ip(v int) *int { return &v }

func thresholds() config.Thresholds {
	t := config.DefaultThresholds()
	t.CurrentYear = 2024
	return t
}

func person(id, name string, birth int) model.CleanPerson {
	return model.CleanPerson{ID: id, Name: name, BirthYear: birth, KnownTitles: []string{"tt0"}}
}

func title(id string, year int) model.CleanTitle {
	return model.CleanTitle{ID: id, Title: "Title " + id, StartYear: year}
}

func rating(id string, r float64, votes int64) model.CleanRating {
	return model.CleanRating{ID: id, AverageRating: r, NumVotes: votes}
}

// fixture wires people through the staging joins so tests exercise the same
// path as a real run.
type fixture struct {
	people  []model.CleanPerson
	titles  []model.CleanTitle
	ratings []model.CleanRating
	crew    []model.RawCrewLink
	cast    []model.RawCastLink
}

func (f fixture) tables() staging.Tables {
	idx := staging.IndexPeople(f.people)
	return staging.Tables{
		People:    f.people,
		Titles:    f.titles,
		Ratings:   f.ratings,
		Directors: staging.DirectorCredits(f.crew, idx),
		Actors:    staging.ActorCredits(f.cast, idx),
	}
}

func cast(movie, personID string, order *int) model.RawCastLink {
	return model.RawCastLink{TitleID: movie, PersonID: personID, Category: "actor", BillingOrder: order}
}

func TestBuildMovies_JoinsAndOrdering(t *testing.T) {
	f := fixture{
		people: []model.CleanPerson{
			person("nm3", "Zoe", 1970),
			person("nm2", "Anna", 1960),
			person("nm1", "Anna", 1965),
		},
		titles: []model.CleanTitle{title("tt2", 2000), title("tt1", 1999), title("tt9", 2001)},
		ratings: []model.CleanRating{
			rating("tt1", 8.5, 20000),
			rating("tt2", 8.49999, 30000),
		},
		crew: []model.RawCrewLink{
			{TitleID: "tt1", DirectorIDs: []string{"nm3", "nm2", "nm1", "nmUnknown"}},
		},
	}
	movies := BuildMovies(f.tables(), thresholds())

	require.Len(t, movies, 2, "tt9 has no rating and must be excluded")
	assert.Equal(t, "tt1", movies[0].MovieID)
	assert.Equal(t, "tt2", movies[1].MovieID)

	assert.Equal(t, CategoryExcellent, movies[0].RatingCategory)
	assert.Equal(t, CategoryVeryGood, movies[1].RatingCategory)

	var ids []string
	for _, d := range movies[0].Directors {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"nm1", "nm2", "nm3"}, ids, "name order, id breaks the Anna tie")
	assert.Equal(t, 3, movies[0].DirectorCount)

	assert.Empty(t, movies[1].Directors)
	assert.Equal(t, 0, movies[1].DirectorCount)
	assert.Equal(t, 0, movies[1].ActorCount)
}

/*
TestBuildMovies_ActorsDropUnresolvedBeforeTruncating bills twelve actors with
two unresolved people near the top. The list must hold the first ten resolved
actors in billing order, not eight.
*/
func TestBuildMovies_ActorsDropUnresolvedBeforeTruncating(t *testing.T) {
	f := fixture{
		titles:  []model.CleanTitle{title("tt1", 2000)},
		ratings: []model.CleanRating{rating("tt1", 7, 50000)},
	}
	for i := 12; i >= 1; i-- {
		id := fmt.Sprintf("nm%02d", i)
		if i != 2 && i != 3 {
			f.people = append(f.people, person(id, "Actor "+id, 1970))
		}
		f.cast = append(f.cast, cast("tt1", id, ip(i)))
	}
	f.cast = append(f.cast, cast("tt1", "nm01", nil))

	movies := BuildMovies(f.tables(), thresholds())
	require.Len(t, movies, 1)
	actors := movies[0].Actors
	require.Len(t, actors, 10)
	assert.Equal(t, 10, movies[0].ActorCount)

	assert.Equal(t, "nm01", actors[0].ID)
	assert.Equal(t, "nm04", actors[1].ID)
	assert.Equal(t, "nm12", actors[9].ID)
	for i := 1; i < len(actors); i++ {
		assert.LessOrEqual(t, *actors[i-1].BillingOrder, *actors[i].BillingOrder)
	}
	require.NotNil(t, actors[0].Gender)
	assert.Equal(t, "male", *actors[0].Gender)
}

func TestRatingCategory_Boundaries(t *testing.T) {
	tiers := config.DefaultThresholds().MovieTiers
	cases := map[float64]string{
		10:      CategoryExcellent,
		8.5:     CategoryExcellent,
		8.49999: CategoryVeryGood,
		7.5:     CategoryVeryGood,
		6.5:     CategoryGood,
		5.5:     CategoryAverage,
		5.49:    CategoryPoor,
		0:       CategoryPoor,
	}
	for r, want := range cases {
		assert.Equal(t, want, RatingCategory(r, tiers), "rating %v", r)
	}
}

func TestTiers(t *testing.T) {
	th := config.DefaultThresholds()
	assert.Equal(t, TierElite, PersonTier(8.0, th.PersonTiers))
	assert.Equal(t, TierExcellent, PersonTier(7.99, th.PersonTiers))
	assert.Equal(t, TierGood, PersonTier(6.0, th.PersonTiers))
	assert.Equal(t, TierAverage, PersonTier(5.99, th.PersonTiers))

	assert.Equal(t, StageProlific, CareerStage(20, th.DirectorStages))
	assert.Equal(t, StageEstablished, CareerStage(20, th.ActorStages))
	assert.Equal(t, StageEmerging, CareerStage(5, th.ActorStages))
	assert.Equal(t, StageNewcomer, CareerStage(4, th.DirectorStages))

	assert.Equal(t, RoleLeading, RoleType(50, th.RoleTypes))
	assert.Equal(t, RoleMixed, RoleType(25, th.RoleTypes))
	assert.Equal(t, RoleSupporting, RoleType(24.9, th.RoleTypes))
}

// careerFixture: nm1 directs M1..M3 and acts in M1 and M2, nm2 acts in all
// three and is listed first only in M2, nm3 heads the M3 list.
func careerFixture() fixture {
	return fixture{
		people: []model.CleanPerson{
			person("nm1", "Lead", 1950),
			person("nm2", "Support", 1960),
			person("nm3", "Third", 1970),
		},
		titles: []model.CleanTitle{title("M1", 1990), title("M2", 2005), title("M3", 2010)},
		ratings: []model.CleanRating{
			rating("M1", 7.0, 100000),
			rating("M2", 9.0, 50000),
			rating("M3", 9.0, 200000),
		},
		crew: []model.RawCrewLink{
			{TitleID: "M1", DirectorIDs: []string{"nm1"}},
			{TitleID: "M2", DirectorIDs: []string{"nm1"}},
			{TitleID: "M3", DirectorIDs: []string{"nm1"}},
		},
		cast: []model.RawCastLink{
			cast("M1", "nm1", ip(1)), cast("M1", "nm2", ip(2)),
			cast("M2", "nm2", ip(1)), cast("M2", "nm1", ip(2)),
			cast("M3", "nm2", ip(3)), cast("M3", "nm3", ip(1)),
		},
	}
}

func TestBuildDirectors_Aggregates(t *testing.T) {
	f := careerFixture()
	th := thresholds()
	movies := BuildMovies(f.tables(), th)
	dims := BuildDirectors(movies, f.people, th)

	require.Len(t, dims, 1)
	d := dims[0]
	assert.Equal(t, "nm1", d.PersonID)
	assert.Equal(t, 3, d.TotalMovies)
	assert.Equal(t, 8.33, d.AvgMovieRating)
	assert.Equal(t, int64(350000), d.TotalVotes)
	assert.Equal(t, 1990, d.FirstMovieYear)
	assert.Equal(t, 2010, d.LatestMovieYear)
	assert.Equal(t, 20, d.CareerSpanYears)
	assert.Equal(t, "M3", d.BestMovieID)
	assert.Equal(t, 9.0, d.BestMovieRating)
	assert.Equal(t, "Title M3", d.BestMovieTitle)
	assert.Equal(t, 2010, d.BestMovieYear)
	assert.Equal(t, TierElite, d.Tier)
	assert.Equal(t, StageNewcomer, d.CareerStage)
	require.NotNil(t, d.Age)
	assert.Equal(t, 74, *d.Age)
}

func TestBuildActors_LeadRoles(t *testing.T) {
	f := careerFixture()
	th := thresholds()
	movies := BuildMovies(f.tables(), th)
	dims := BuildActors(movies, f.people, th)

	require.Len(t, dims, 3)
	lead, support := dims[0], dims[1]

	assert.Equal(t, "nm1", lead.PersonID)
	assert.Equal(t, 2, lead.TotalMovies)
	assert.Equal(t, 1, lead.LeadRoleCount)
	assert.Equal(t, 50.0, lead.LeadRolePercentage)
	assert.Equal(t, RoleLeading, lead.RoleType)
	require.NotNil(t, lead.Gender)
	assert.Equal(t, "male", *lead.Gender)

	assert.Equal(t, "nm2", support.PersonID)
	assert.Equal(t, 3, support.TotalMovies)
	assert.Equal(t, 1, support.LeadRoleCount)
	assert.Equal(t, 33.3, support.LeadRolePercentage)
	assert.Equal(t, RoleMixed, support.RoleType)
	assert.Equal(t, "M3", support.BestMovieID)
}

func TestBestMovie_FullTieUsesLowestID(t *testing.T) {
	f := fixture{
		people:  []model.CleanPerson{person("nm1", "D", 1950)},
		titles:  []model.CleanTitle{title("tt5", 2001), title("tt3", 2002)},
		ratings: []model.CleanRating{rating("tt5", 8, 20000), rating("tt3", 8, 20000)},
		crew: []model.RawCrewLink{
			{TitleID: "tt5", DirectorIDs: []string{"nm1"}},
			{TitleID: "tt3", DirectorIDs: []string{"nm1"}},
		},
	}
	th := thresholds()
	dims := BuildDirectors(BuildMovies(f.tables(), th), f.people, th)
	require.Len(t, dims, 1)
	assert.Equal(t, "tt3", dims[0].BestMovieID)
}

func TestAge(t *testing.T) {
	assert.Nil(t, age(nil, nil, 2024))
	assert.Equal(t, 44, *age(ip(1980), nil, 2024))
	assert.Equal(t, 57, *age(ip(1899), ip(1956), 2024))
	assert.Nil(t, age(ip(1980), nil, 0))
}

/*
TestDimensions_ReferentialCompleteness verifies that every person referenced
from a movie list appears exactly once in the matching dimension and nobody
else does.
*/
func TestDimensions_ReferentialCompleteness(t *testing.T) {
	f := careerFixture()
	f.people = append(f.people, person("nm9", "Never cast", 1980))
	th := thresholds()
	movies := BuildMovies(f.tables(), th)

	wantActors, wantDirectors := map[string]int{}, map[string]int{}
	for _, m := range movies {
		for _, a := range m.Actors {
			wantActors[a.ID] = 1
		}
		for _, d := range m.Directors {
			wantDirectors[d.ID] = 1
		}
	}
	gotActors, gotDirectors := map[string]int{}, map[string]int{}
	for _, a := range BuildActors(movies, f.people, th) {
		gotActors[a.PersonID]++
	}
	for _, d := range BuildDirectors(movies, f.people, th) {
		gotDirectors[d.PersonID]++
	}
	assert.Equal(t, wantActors, gotActors)
	assert.Equal(t, wantDirectors, gotDirectors)
}

func TestTables_ValidateAndIdempotent(t *testing.T) {
	build := func() []schema.Table {
		f := careerFixture()
		th := thresholds()
		movies := BuildMovies(f.tables(), th)
		return []schema.Table{
			MoviesTable(movies),
			ActorsTable(BuildActors(movies, f.people, th)),
			DirectorsTable(BuildDirectors(movies, f.people, th)),
		}
	}
	first, second := build(), build()
	for i := range first {
		require.NoError(t, first[i].Validate(), first[i].Name)
		a, err := schema.Fingerprint(first[i])
		require.NoError(t, err)
		b, err := schema.Fingerprint(second[i])
		require.NoError(t, err)
		assert.Equal(t, a, b, first[i].Name)
	}
	assert.Len(t, first[0].Rows, 3)
	assert.Len(t, first[1].Rows, 3)
	assert.Len(t, first[2].Rows, 1)
}

func TestSchemas_Contract(t *testing.T) {
	names := func(cols []schema.Column) []string {
		out := make([]string, 0, len(cols))
		for _, c := range cols {
			out = append(out, c.Name)
		}
		return out
	}
	s := Schemas()
	require.Len(t, s, 3)
	assert.Contains(t, names(s[1].Columns), "lead_role_percentage")
	assert.NotContains(t, names(s[2].Columns), "gender")
	assert.Len(t, s[1].Columns, len(s[2].Columns)+4)
}
