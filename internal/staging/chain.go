package staging

import (
	"fmt"

	"moviemart/internal/config"
	"moviemart/internal/transformer"
	"moviemart/internal/transformer/builtin"
)

// Column names after header normalization (camelCase -> snake_case).
const (
	colNconst      = "nconst"
	colTconst      = "tconst"
	colPrimaryName = "primary_name"
	colBirthYear   = "birth_year"
	colDeathYear   = "death_year"
	colProfession  = "primary_profession"
	colKnownFor    = "known_for_titles"
	colTitleType   = "title_type"
	colTitle       = "primary_title"
	colOriginal    = "original_title"
	colIsAdult     = "is_adult"
	colStartYear   = "start_year"
	colRuntime     = "runtime_minutes"
	colGenres      = "genres"
	colRating      = "average_rating"
	colVotes       = "num_votes"
	colDirectors   = "directors"
	colWriters     = "writers"
	colOrdering    = "ordering"
	colCategory    = "category"
	colCharacters  = "characters"
)

// Format describes how raw cells encode nulls and arrays.
type Format struct {
	NullSentinel   string
	ArraySeparator string
}

// FormatFrom reads the null sentinel and array separator from parser options.
func FormatFrom(o config.Options) Format {
	return Format{
		NullSentinel:   o.String("null_sentinel", `\N`),
		ArraySeparator: o.String("array_separator", ","),
	}
}

// Chain returns the transformer chain that prepares raw rows of entity for
// decoding: sentinel to nil, NFC trim, array split, numeric coercion, key
// required, first row per key wins. A fresh chain must be used per stream
// because the de-duplication state spans batches.
func Chain(entity string, f Format) (transformer.Chain, error) {
	var (
		key    []string // required and de-duplicated
		unique []string // extra de-duplication columns
		arrays []string
		types  map[string]string
	)
	switch entity {
	case config.EntityPeople:
		key = []string{colNconst}
		arrays = []string{colProfession, colKnownFor}
		types = map[string]string{colBirthYear: "int", colDeathYear: "int"}
	case config.EntityTitles:
		key = []string{colTconst}
		arrays = []string{colGenres}
		types = map[string]string{colIsAdult: "bool", colStartYear: "int", colRuntime: "int"}
	case config.EntityRatings:
		key = []string{colTconst}
		types = map[string]string{colRating: "float", colVotes: "int"}
	case config.EntityCrew:
		key = []string{colTconst}
		arrays = []string{colDirectors, colWriters}
	case config.EntityCast:
		key = []string{colTconst, colNconst}
		unique = []string{colOrdering}
		types = map[string]string{colOrdering: "int"}
	default:
		return nil, fmt.Errorf("unknown entity %q", entity)
	}

	return transformer.Chain{
		builtin.Nullify{Sentinel: f.NullSentinel},
		builtin.Normalize{},
		builtin.Split{Fields: arrays, Separator: f.ArraySeparator, Sentinel: f.NullSentinel},
		builtin.Coerce{Types: types},
		builtin.Require{Fields: key},
		builtin.NewDeDup(append(key, unique...)...),
	}, nil
}
