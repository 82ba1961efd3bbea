package staging

import (
	"encoding/json"

	"moviemart/internal/model"
	"moviemart/pkg/records"
)

// Raw holds every decoded extract of one run.
type Raw struct {
	People  []model.RawPerson
	Titles  []model.RawTitle
	Ratings []model.RawRating
	Crew    []model.RawCrewLink
	Cast    []model.RawCastLink
}

// DecodePeople maps name.basics records to RawPerson.
func DecodePeople(recs []records.Record) []model.RawPerson {
	out := make([]model.RawPerson, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.RawPerson{
			ID:          r.String(colNconst),
			Name:        r.String(colPrimaryName),
			BirthYear:   intPtr(r, colBirthYear),
			DeathYear:   intPtr(r, colDeathYear),
			Professions: r.Strings(colProfession),
			KnownTitles: r.Strings(colKnownFor),
		})
	}
	return out
}

// DecodeTitles maps title.basics records to RawTitle.
func DecodeTitles(recs []records.Record) []model.RawTitle {
	out := make([]model.RawTitle, 0, len(recs))
	for _, r := range recs {
		t := model.RawTitle{
			ID:             r.String(colTconst),
			Title:          r.String(colTitle),
			OriginalTitle:  r.String(colOriginal),
			Type:           r.String(colTitleType),
			RuntimeMinutes: intPtr(r, colRuntime),
			StartYear:      intPtr(r, colStartYear),
			Genres:         r.Strings(colGenres),
		}
		if b, ok := r.Bool(colIsAdult); ok {
			t.IsAdult = &b
		}
		out = append(out, t)
	}
	return out
}

// DecodeRatings maps title.ratings records to RawRating.
func DecodeRatings(recs []records.Record) []model.RawRating {
	out := make([]model.RawRating, 0, len(recs))
	for _, r := range recs {
		rt := model.RawRating{ID: r.String(colTconst)}
		if f, ok := r.Float(colRating); ok {
			rt.AverageRating = &f
		}
		if n, ok := r.Int(colVotes); ok {
			rt.NumVotes = &n
		}
		out = append(out, rt)
	}
	return out
}

// DecodeCrew maps title.crew records to RawCrewLink.
func DecodeCrew(recs []records.Record) []model.RawCrewLink {
	out := make([]model.RawCrewLink, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.RawCrewLink{
			TitleID:     r.String(colTconst),
			DirectorIDs: r.Strings(colDirectors),
			WriterIDs:   r.Strings(colWriters),
		})
	}
	return out
}

// DecodeCast maps title.principals records to RawCastLink.
func DecodeCast(recs []records.Record) []model.RawCastLink {
	out := make([]model.RawCastLink, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.RawCastLink{
			TitleID:      r.String(colTconst),
			PersonID:     r.String(colNconst),
			Category:     r.String(colCategory),
			BillingOrder: intPtr(r, colOrdering),
			Characters:   parseCharacters(r.String(colCharacters)),
		})
	}
	return out
}

func intPtr(r records.Record, key string) *int {
	n, ok := r.Int(key)
	if !ok {
		return nil
	}
	v := int(n)
	return &v
}

// parseCharacters decodes the JSON array used by title.principals, e.g.
// ["Self","Narrator"]. Text that is not a JSON string array is kept as one
// element.
func parseCharacters(s string) []string {
	if s == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(s), &names); err != nil {
		return []string{s}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}
