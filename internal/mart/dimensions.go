package mart

import (
	"sort"

	"moviemart/internal/config"
	"moviemart/internal/model"
	"moviemart/internal/staging"
)

// credit is one exploded (person, movie) pair. position is the 1-based index
// in the movie's list; only actors use it.
type credit struct {
	movie    *model.Movie
	position int
}

// rollup accumulates one person's credits. movies holds each movie once,
// appearances every exploded row.
type rollup struct {
	id          string
	name        string
	birthYear   *int
	deathYear   *int
	gender      *string
	movies      []*model.Movie
	movieSeen   map[string]struct{}
	appearances int
	leadRoles   int
}

func (r *rollup) add(c credit) {
	r.appearances++
	if c.position == 1 {
		r.leadRoles++
	}
	if _, dup := r.movieSeen[c.movie.MovieID]; dup {
		return
	}
	r.movieSeen[c.movie.MovieID] = struct{}{}
	r.movies = append(r.movies, c.movie)
}

// index groups exploded credits by person id. Movies are visited in slice
// order, so accumulation order is reproducible.
type index struct {
	byID map[string]*rollup
	ids  []string
}

func newIndex() *index { return &index{byID: make(map[string]*rollup)} }

func (ix *index) get(id string) *rollup {
	r, ok := ix.byID[id]
	if !ok {
		r = &rollup{id: id, movieSeen: make(map[string]struct{})}
		ix.byID[id] = r
		ix.ids = append(ix.ids, id)
	}
	return r
}

func (ix *index) sortedIDs() []string {
	ids := append([]string(nil), ix.ids...)
	sort.Strings(ids)
	return ids
}

// BuildDirectors rolls the movies' director lists up to one row per director,
// sorted by person id.
func BuildDirectors(movies []model.Movie, people []model.CleanPerson, th config.Thresholds) []model.DirectorDimension {
	ix := newIndex()
	for i := range movies {
		m := &movies[i]
		for _, d := range m.Directors {
			r := ix.get(d.ID)
			if r.name == "" {
				r.name, r.birthYear, r.deathYear = d.Name, d.BirthYear, d.DeathYear
			}
			r.add(credit{movie: m})
		}
	}

	bio := staging.IndexPeople(people)
	out := make([]model.DirectorDimension, 0, len(ix.ids))
	for _, id := range ix.sortedIDs() {
		out = append(out, model.DirectorDimension{
			PersonDimension: personRow(ix.byID[id], bio[id], th, th.DirectorStages),
		})
	}
	return out
}

// BuildActors rolls the movies' actor lists up to one row per actor, sorted
// by person id. Lead roles are credits billed first in the movie's list.
func BuildActors(movies []model.Movie, people []model.CleanPerson, th config.Thresholds) []model.ActorDimension {
	ix := newIndex()
	for i := range movies {
		m := &movies[i]
		for pos, a := range m.Actors {
			r := ix.get(a.ID)
			if r.name == "" {
				r.name, r.birthYear, r.deathYear = a.Name, a.BirthYear, a.DeathYear
			}
			if r.gender == nil {
				r.gender = a.Gender
			}
			r.add(credit{movie: m, position: pos + 1})
		}
	}

	bio := staging.IndexPeople(people)
	out := make([]model.ActorDimension, 0, len(ix.ids))
	for _, id := range ix.sortedIDs() {
		r := ix.byID[id]
		var pct float64
		if r.appearances > 0 {
			pct = round(float64(r.leadRoles)/float64(r.appearances)*100, 1)
		}
		out = append(out, model.ActorDimension{
			PersonDimension:    personRow(r, bio[id], th, th.ActorStages),
			Gender:             r.gender,
			LeadRoleCount:      r.leadRoles,
			LeadRolePercentage: pct,
			RoleType:           RoleType(pct, th.RoleTypes),
		})
	}
	return out
}

// personRow computes the shared aggregates and joins biography. When p is nil
// the display fields carried by the movie references are used instead.
func personRow(r *rollup, p *model.CleanPerson, th config.Thresholds, stages config.CareerStages) model.PersonDimension {
	row := model.PersonDimension{
		PersonID:  r.id,
		Name:      r.name,
		BirthYear: r.birthYear,
		DeathYear: r.deathYear,
	}
	if p != nil {
		birth := p.BirthYear
		row.Name = p.Name
		row.BirthYear = &birth
		row.DeathYear = p.DeathYear
		row.Profession = p.Professions
		row.KnownForTitles = p.KnownTitles
	}
	row.Age = age(row.BirthYear, row.DeathYear, th.CurrentYear)

	var (
		sum  float64
		best *model.Movie
	)
	for i, m := range r.movies {
		sum += m.AverageRating
		row.TotalVotes += m.NumVotes
		if i == 0 || m.ReleaseYear < row.FirstMovieYear {
			row.FirstMovieYear = m.ReleaseYear
		}
		if i == 0 || m.ReleaseYear > row.LatestMovieYear {
			row.LatestMovieYear = m.ReleaseYear
		}
		if best == nil || betterMovie(m, best) {
			best = m
		}
	}
	row.TotalMovies = len(r.movies)
	if row.TotalMovies > 0 {
		row.AvgMovieRating = round(sum/float64(row.TotalMovies), 2)
		row.CareerSpanYears = row.LatestMovieYear - row.FirstMovieYear
	}
	if best != nil {
		row.BestMovieRating = best.AverageRating
		row.BestMovieTitle = best.Title
		row.BestMovieID = best.MovieID
		row.BestMovieYear = best.ReleaseYear
	}
	row.Tier = PersonTier(row.AvgMovieRating, th.PersonTiers)
	row.CareerStage = CareerStage(row.TotalMovies, stages)
	return row
}

// betterMovie orders by rating, then votes, then movie id ascending.
func betterMovie(a, b *model.Movie) bool {
	if a.AverageRating != b.AverageRating {
		return a.AverageRating > b.AverageRating
	}
	if a.NumVotes != b.NumVotes {
		return a.NumVotes > b.NumVotes
	}
	return a.MovieID < b.MovieID
}

func age(birth, death *int, currentYear int) *int {
	if birth == nil {
		return nil
	}
	var a int
	if death != nil {
		a = *death - *birth
	} else {
		if currentYear == 0 {
			return nil
		}
		a = currentYear - *birth
	}
	return &a
}
