// Command seed loads the tag and file type pools of events from a TOML file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/db"
	"github.com/debemdeboas/editorial/internal/logger"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/repository"
)

type seedFile struct {
	Events []eventSeed `toml:"event"`
}

type eventSeed struct {
	ID        string         `toml:"id"`
	FileTypes []fileTypeSeed `toml:"file_type"`
	Tags      []tagSeed      `toml:"tag"`
}

type fileTypeSeed struct {
	Name          string   `toml:"name"`
	Extensions    []string `toml:"extensions"`
	AllowMultiple bool     `toml:"allow_multiple"`
	Required      bool     `toml:"required"`
	Publishable   bool     `toml:"publishable"`
}

type tagSeed struct {
	Code   string `toml:"code"`
	Title  string `toml:"title"`
	Color  string `toml:"color"`
	System bool   `toml:"system"`
}

func parseSeed(data []byte) (*seedFile, error) {
	var seed seedFile
	md, err := toml.Decode(string(data), &seed)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys: %v", undecoded)
	}

	for _, ev := range seed.Events {
		if ev.ID == "" {
			return nil, fmt.Errorf("event without id")
		}
		for _, ft := range ev.FileTypes {
			if ft.Name == "" {
				return nil, fmt.Errorf("event %s: file type without name", ev.ID)
			}
		}
		for _, tag := range ev.Tags {
			if tag.Code == "" || tag.Title == "" {
				return nil, fmt.Errorf("event %s: tags need a code and a title", ev.ID)
			}
		}
	}
	return &seed, nil
}

// apply upserts every pool entry, so running a seed twice is harmless.
func apply(ctx context.Context, repo repository.PoolRepository, seed *seedFile) (fileTypes, tags int, err error) {
	for _, ev := range seed.Events {
		event := model.EventID(ev.ID)

		for _, s := range ev.FileTypes {
			ft := &model.FileType{
				EventID:       event,
				Name:          s.Name,
				Extensions:    s.Extensions,
				AllowMultiple: s.AllowMultiple,
				Required:      s.Required,
				Publishable:   s.Publishable,
			}
			if err := repo.SaveFileType(ctx, ft); err != nil {
				return fileTypes, tags, err
			}
			fileTypes++
		}

		for _, s := range ev.Tags {
			tag := &model.Tag{
				EventID: event,
				Code:    s.Code,
				Title:   s.Title,
				Color:   s.Color,
				System:  s.System,
			}
			if err := repo.SaveTag(ctx, tag); err != nil {
				return fileTypes, tags, err
			}
			tags++
		}
	}
	return fileTypes, tags, nil
}

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to the configuration file")
	seedPath := pflag.StringP("file", "f", "", "TOML file with the event pools")
	pflag.Parse()

	log := logger.New("info", logger.FormatConsole)

	if *seedPath == "" {
		log.Fatal().Msg("--file is required")
	}

	config.SetLogger(log)
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatal().Err(err).Msgf(config.ErrLoadConfigFmt, err)
	}
	db.SetLogger(log)
	repository.SetLogger(log)

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *seedPath).Msg("Error reading seed file")
	}
	seed, err := parseSeed(data)
	if err != nil {
		log.Fatal().Err(err).Str("file", *seedPath).Msg("Invalid seed file")
	}

	database, err := db.Open(config.AppConfig.Database.Driver, config.AppConfig.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msgf(config.ErrInitializeDatabaseFmt, err)
	}
	defer database.Close()

	fileTypes, tags, err := apply(context.Background(), repository.NewDBRepository(database), seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Error seeding pools")
	}
	log.Info().Int("events", len(seed.Events)).Int("file_types", fileTypes).Int("tags", tags).Msg("Seeded event pools")
}
