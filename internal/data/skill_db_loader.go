package data

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// skillFile is the on-disk layout of the skill catalog.
type skillFile struct {
	Skills []skillDef `yaml:"skills"`
}

type skillDef struct {
	ID      uint16    `yaml:"id"`
	Name    string    `yaml:"name"`
	MaxRank uint8     `yaml:"max_rank"`
	Ranks   []rankDef `yaml:"ranks"`
}

type rankDef struct {
	Rank       uint8          `yaml:"rank"`
	Race       int32          `yaml:"race"`
	Conditions []conditionDef `yaml:"conditions"`
}

type conditionDef struct {
	Count   int16   `yaml:"count"`
	Exp     float64 `yaml:"exp"`
	Visible bool    `yaml:"visible"`
}

// LoadSkillDb reads the skill catalog from a YAML file.
func LoadSkillDb(path string) (*SkillDb, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skill data %s: %w", path, err)
	}

	db, err := ParseSkillDb(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing skill data %s: %w", path, err)
	}

	slog.Info("loaded skills", "path", path, "skills", db.Count())
	return db, nil
}

// ParseSkillDb builds a catalog from YAML content.
func ParseSkillDb(raw []byte) (*SkillDb, error) {
	var f skillFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	db := NewSkillDb()
	for i := range f.Skills {
		sd, err := buildSkillData(&f.Skills[i])
		if err != nil {
			return nil, err
		}
		if db.Find(sd.ID) != nil {
			return nil, fmt.Errorf("duplicate skill %d", sd.ID)
		}
		db.Add(sd)
	}
	return db, nil
}

func buildSkillData(def *skillDef) (*SkillData, error) {
	if def.ID == 0 {
		return nil, fmt.Errorf("skill %q: missing id", def.Name)
	}

	sd := NewSkillData(def.ID, def.Name, def.MaxRank)
	for _, r := range def.Ranks {
		if len(r.Conditions) > ConditionCount {
			return nil, fmt.Errorf("skill %d rank %d: %d conditions, at most %d allowed",
				def.ID, r.Rank, len(r.Conditions), ConditionCount)
		}

		rd := &SkillRankData{Rank: r.Rank, Race: r.Race}
		for i, c := range r.Conditions {
			if c.Count < 0 {
				return nil, fmt.Errorf("skill %d rank %d: condition %d has negative count", def.ID, r.Rank, i+1)
			}
			rd.Conditions[i] = SkillCondition{Count: c.Count, Exp: c.Exp, Visible: c.Visible}
		}
		sd.AddRankData(rd)
	}

	if sd.RankCount() == 0 {
		slog.Warn("skill has no rank data", "skill", def.ID, "name", def.Name)
	}
	return sd, nil
}
