package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MOVIEMART_MIN_VOTES.
const EnvPrefix = "MOVIEMART"

// Load decodes the pipeline file at path on top of Default(), applies
// environment overrides and resolves the current year. The file format is
// chosen by extension: ".toml" is TOML, anything else is JSON.
//
// Load does not validate; callers run ValidatePipeline on the result.
func Load(path string) (Pipeline, error) {
	p := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode toml %s: %w", path, err)
		}
	default:
		f, err := os.Open(path)
		if err != nil {
			return Pipeline{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("decode json %s: %w", path, err)
		}
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}

	if err := ApplyEnv(&p); err != nil {
		return Pipeline{}, err
	}
	ResolveCurrentYear(&p, time.Now())
	return p, nil
}

// ResolveCurrentYear pins Thresholds.CurrentYear to now's year when unset, so
// that every stage of one run sees the same value.
func ResolveCurrentYear(p *Pipeline, now time.Time) {
	if p.Thresholds.CurrentYear == 0 {
		p.Thresholds.CurrentYear = now.Year()
	}
}

// ApplyEnv overrides selected fields from MOVIEMART_* environment variables:
//
//	MOVIEMART_MIN_VOTES, MOVIEMART_MIN_RELEASE_YEAR, MOVIEMART_CURRENT_YEAR,
//	MOVIEMART_LOG_LEVEL, MOVIEMART_JOB
//
// A numeric override that does not parse is an error rather than a silent
// zero.
func ApplyEnv(p *Pipeline) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range []string{"min_votes", "min_release_year", "current_year", "log_level", "job"} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if v.IsSet("min_votes") {
		n, err := envInt(v, "min_votes")
		if err != nil {
			return err
		}
		p.Thresholds.MinVotes = n
	}
	if v.IsSet("min_release_year") {
		n, err := envInt(v, "min_release_year")
		if err != nil {
			return err
		}
		p.Thresholds.MinReleaseYear = int(n)
	}
	if v.IsSet("current_year") {
		n, err := envInt(v, "current_year")
		if err != nil {
			return err
		}
		p.Thresholds.CurrentYear = int(n)
	}
	if s := v.GetString("log_level"); s != "" {
		p.Log.Level = s
	}
	if s := v.GetString("job"); s != "" {
		p.Job = s
	}
	return nil
}

func envInt(v *viper.Viper, key string) (int64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("env %s_%s=%q: not an integer", EnvPrefix, strings.ToUpper(key), raw)
	}
	return n, nil
}
