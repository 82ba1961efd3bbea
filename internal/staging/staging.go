// Package staging cleans and filters each raw extract independently. Crew and
// cast additionally fan out their many-valued person keys and left-join the
// cleaned people. Every function here is pure: outputs keep input order and
// inputs are never modified.
package staging

import (
	"moviemart/internal/config"
	"moviemart/internal/model"
)

// Title types and principal categories that matter downstream.
const (
	TitleTypeMovie  = "movie"
	CategoryActor   = "actor"
	CategoryActress = "actress"
	GenderMale      = "male"
	GenderFemale    = "female"
	minRating       = 0.0
	maxRating       = 10.0
)

// Tables is the staging layer output.
type Tables struct {
	People    []model.CleanPerson
	Titles    []model.CleanTitle
	Ratings   []model.CleanRating
	Directors []model.DirectorCredit
	Actors    []model.ActorCredit
}

// Build runs every staging model over raw.
func Build(raw Raw, th config.Thresholds) Tables {
	people := CleanPeople(raw.People, th)
	idx := IndexPeople(people)
	return Tables{
		People:    people,
		Titles:    CleanTitles(raw.Titles, th),
		Ratings:   CleanRatings(raw.Ratings, th),
		Directors: DirectorCredits(raw.Crew, idx),
		Actors:    ActorCredits(raw.Cast, idx),
	}
}

// CleanTitles keeps non-adult movies with a title and a start year strictly
// after th.MinReleaseYear. A title with an unknown adult flag is dropped.
func CleanTitles(raw []model.RawTitle, th config.Thresholds) []model.CleanTitle {
	var out []model.CleanTitle
	for _, t := range raw {
		if t.Type != TitleTypeMovie || t.IsAdult == nil || *t.IsAdult {
			continue
		}
		if t.StartYear == nil || *t.StartYear <= th.MinReleaseYear || t.Title == "" {
			continue
		}
		out = append(out, model.CleanTitle{
			ID:             t.ID,
			Title:          t.Title,
			OriginalTitle:  t.OriginalTitle,
			RuntimeMinutes: t.RuntimeMinutes,
			StartYear:      *t.StartYear,
			Genres:         t.Genres,
		})
	}
	return out
}

// CleanRatings keeps ratings in [0, 10] with more than th.MinVotes votes.
func CleanRatings(raw []model.RawRating, th config.Thresholds) []model.CleanRating {
	var out []model.CleanRating
	for _, r := range raw {
		if r.AverageRating == nil || *r.AverageRating < minRating || *r.AverageRating > maxRating {
			continue
		}
		if r.NumVotes == nil || *r.NumVotes < 0 || *r.NumVotes <= th.MinVotes {
			continue
		}
		out = append(out, model.CleanRating{
			ID:            r.ID,
			AverageRating: *r.AverageRating,
			NumVotes:      *r.NumVotes,
		})
	}
	return out
}

// CleanPeople keeps named people born within [MinBirthYear, MaxBirthYear]
// with at least one known title.
func CleanPeople(raw []model.RawPerson, th config.Thresholds) []model.CleanPerson {
	var out []model.CleanPerson
	for _, p := range raw {
		if p.Name == "" || len(p.KnownTitles) == 0 || p.BirthYear == nil {
			continue
		}
		if *p.BirthYear < th.MinBirthYear || *p.BirthYear > th.MaxBirthYear {
			continue
		}
		out = append(out, model.CleanPerson{
			ID:          p.ID,
			Name:        p.Name,
			BirthYear:   *p.BirthYear,
			DeathYear:   p.DeathYear,
			Professions: p.Professions,
			KnownTitles: p.KnownTitles,
		})
	}
	return out
}

// IndexPeople maps person id to its cleaned row.
func IndexPeople(people []model.CleanPerson) map[string]*model.CleanPerson {
	idx := make(map[string]*model.CleanPerson, len(people))
	for i := range people {
		idx[people[i].ID] = &people[i]
	}
	return idx
}

// DirectorCredits emits one credit per listed director. Links without
// directors produce nothing; directors missing from people keep their credit
// with a nil Person.
func DirectorCredits(crew []model.RawCrewLink, people map[string]*model.CleanPerson) []model.DirectorCredit {
	var out []model.DirectorCredit
	for _, c := range crew {
		for _, id := range c.DirectorIDs {
			if id == "" {
				continue
			}
			out = append(out, model.DirectorCredit{
				MovieID:    c.TitleID,
				DirectorID: id,
				Person:     people[id],
			})
		}
	}
	return out
}

// ActorCredits keeps acting credits and derives gender from the category.
func ActorCredits(cast []model.RawCastLink, people map[string]*model.CleanPerson) []model.ActorCredit {
	var out []model.ActorCredit
	for _, c := range cast {
		gender, ok := genderOf(c.Category)
		if !ok {
			continue
		}
		out = append(out, model.ActorCredit{
			MovieID:      c.TitleID,
			PersonID:     c.PersonID,
			BillingOrder: c.BillingOrder,
			Characters:   c.Characters,
			Gender:       gender,
			Person:       people[c.PersonID],
		})
	}
	return out
}

// genderOf maps an acting category to a gender; ok is false for non-acting
// categories.
func genderOf(category string) (string, bool) {
	switch category {
	case CategoryActor:
		return GenderMale, true
	case CategoryActress:
		return GenderFemale, true
	}
	return "", false
}
