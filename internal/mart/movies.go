// Package mart builds the star schema from staging tables: the movies fact
// table and the actor and director dimensions rolled up from it.
package mart

import (
	"sort"

	"moviemart/internal/config"
	"moviemart/internal/model"
	"moviemart/internal/staging"
)

// BuildMovies joins titles to ratings (inner) and attaches the ordered
// director and actor lists (left). The result is sorted by movie id.
func BuildMovies(st staging.Tables, th config.Thresholds) []model.Movie {
	ratings := make(map[string]model.CleanRating, len(st.Ratings))
	for _, r := range st.Ratings {
		if _, dup := ratings[r.ID]; !dup {
			ratings[r.ID] = r
		}
	}
	directors := directorsByMovie(st.Directors)
	actors := actorsByMovie(st.Actors, th.MaxActors)

	movies := make([]model.Movie, 0, len(st.Titles))
	seen := make(map[string]struct{}, len(st.Titles))
	for _, t := range st.Titles {
		r, ok := ratings[t.ID]
		if !ok {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}

		ds, as := directors[t.ID], actors[t.ID]
		movies = append(movies, model.Movie{
			MovieID:        t.ID,
			Title:          t.Title,
			OriginalTitle:  t.OriginalTitle,
			RuntimeMinutes: t.RuntimeMinutes,
			ReleaseYear:    t.StartYear,
			Genres:         t.Genres,
			AverageRating:  r.AverageRating,
			NumVotes:       r.NumVotes,
			RatingCategory: RatingCategory(r.AverageRating, th.MovieTiers),
			Directors:      ds,
			Actors:         as,
			DirectorCount:  len(ds),
			ActorCount:     len(as),
		})
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].MovieID < movies[j].MovieID })
	return movies
}

// directorsByMovie keeps resolved credits, one per director and movie, ordered
// by name and then id.
func directorsByMovie(credits []model.DirectorCredit) map[string][]model.DirectorRef {
	out := make(map[string][]model.DirectorRef)
	seen := make(map[[2]string]struct{})
	for _, c := range credits {
		if c.Person == nil || c.DirectorID == "" || c.Person.Name == "" {
			continue
		}
		k := [2]string{c.MovieID, c.DirectorID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		birth := c.Person.BirthYear
		out[c.MovieID] = append(out[c.MovieID], model.DirectorRef{
			ID:        c.DirectorID,
			Name:      c.Person.Name,
			BirthYear: &birth,
			DeathYear: c.Person.DeathYear,
		})
	}
	for _, refs := range out {
		sort.SliceStable(refs, func(i, j int) bool {
			if refs[i].Name != refs[j].Name {
				return refs[i].Name < refs[j].Name
			}
			return refs[i].ID < refs[j].ID
		})
	}
	return out
}

// actorsByMovie drops unresolved credits first, then orders by billing
// (unknown billing last, person id breaks ties) and keeps the first max.
func actorsByMovie(credits []model.ActorCredit, max int) map[string][]model.ActorRef {
	out := make(map[string][]model.ActorRef)
	for _, c := range credits {
		if c.Person == nil || c.PersonID == "" || c.Person.Name == "" {
			continue
		}
		birth := c.Person.BirthYear
		ref := model.ActorRef{
			ID:           c.PersonID,
			Name:         c.Person.Name,
			BirthYear:    &birth,
			DeathYear:    c.Person.DeathYear,
			Characters:   c.Characters,
			BillingOrder: c.BillingOrder,
		}
		if c.Gender != "" {
			g := c.Gender
			ref.Gender = &g
		}
		out[c.MovieID] = append(out[c.MovieID], ref)
	}
	for id, refs := range out {
		sort.SliceStable(refs, func(i, j int) bool { return billedBefore(refs[i], refs[j]) })
		if max > 0 && len(refs) > max {
			out[id] = refs[:max:max]
		}
	}
	return out
}

func billedBefore(a, b model.ActorRef) bool {
	switch {
	case a.BillingOrder == nil && b.BillingOrder == nil:
	case a.BillingOrder == nil:
		return false
	case b.BillingOrder == nil:
		return true
	case *a.BillingOrder != *b.BillingOrder:
		return *a.BillingOrder < *b.BillingOrder
	}
	return a.ID < b.ID
}
