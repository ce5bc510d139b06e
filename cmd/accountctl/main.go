// Command accountctl seeds accounts and characters for the channel server.
//
// Usage:
//
//	accountctl account -id admin -key 0x0123456789ABCDEF
//	accountctl key -id admin -key 0x0123456789ABCDEF
//	accountctl character -account admin -entity 0x10000000000001 -name Tester -race 10001 -skills 23002,20001
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/udisondev/mabigo/internal/config"
	"github.com/udisondev/mabigo/internal/data"
	"github.com/udisondev/mabigo/internal/db"
	"github.com/udisondev/mabigo/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: accountctl <account|key|character> [flags]")
}

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.LoadChannelServer(config.ChannelServerPath())
	if err != nil {
		return fmt.Errorf("loading channel server config: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return err
	}
	repo := database.Accounts()

	switch cmd {
	case "account":
		fs := flag.NewFlagSet("account", flag.ExitOnError)
		id := fs.String("id", "", "account id")
		key := fs.String("key", "0", "session key (decimal or 0x hex)")
		authority := fs.Int("authority", 0, "authority level")
		_ = fs.Parse(args)

		sessionKey, err := parseInt64(*key)
		if err != nil {
			return fmt.Errorf("parsing -key: %w", err)
		}
		if *id == "" {
			return fmt.Errorf("-id is required")
		}
		if err := repo.CreateAccount(ctx, &model.Account{ID: *id, SessionKey: sessionKey, Authority: int16(*authority)}); err != nil {
			return err
		}
		slog.Info("account created", "account", *id)

	case "key":
		fs := flag.NewFlagSet("key", flag.ExitOnError)
		id := fs.String("id", "", "account id")
		key := fs.String("key", "", "session key (decimal or 0x hex)")
		_ = fs.Parse(args)

		sessionKey, err := parseInt64(*key)
		if err != nil {
			return fmt.Errorf("parsing -key: %w", err)
		}
		if err := repo.UpdateSessionKey(ctx, *id, sessionKey); err != nil {
			return err
		}
		slog.Info("session key updated", "account", *id)

	case "character":
		fs := flag.NewFlagSet("character", flag.ExitOnError)
		account := fs.String("account", "", "owning account id")
		entity := fs.String("entity", "", "entity id (decimal or 0x hex)")
		name := fs.String("name", "", "character name")
		race := fs.Int("race", int(model.RaceHumanMale), "race id")
		region := fs.Int("region", 1, "starting region id")
		skillList := fs.String("skills", "", "comma separated skill ids given at Novice")
		_ = fs.Parse(args)

		entityID, err := parseInt64(*entity)
		if err != nil {
			return fmt.Errorf("parsing -entity: %w", err)
		}

		catalog, err := data.LoadSkillDb(cfg.SkillDataPath)
		if err != nil {
			return err
		}
		infos, err := noviceSkills(catalog, entityID, *name, model.Race(*race), *skillList)
		if err != nil {
			return err
		}

		rec := &model.CharacterRecord{
			EntityID: entityID,
			Name:     *name,
			Race:     model.Race(*race),
			RegionID: int32(*region),
			Skills:   infos,
		}
		if err := repo.CreateCharacter(ctx, *account, rec); err != nil {
			return err
		}
		slog.Info("character created", "account", *account, "name", *name, "skills", len(infos))

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// noviceSkills gives each listed skill to a scratch character and returns the
// resulting skill infos.
func noviceSkills(catalog model.SkillCatalog, entityID int64, name string, race model.Race, list string) ([]model.SkillInfo, error) {
	cr := model.NewCharacter(entityID, name, race)
	defer cr.Dispose()

	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseUint(field, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing skill id %q: %w", field, err)
		}
		if _, err := cr.Skills().Give(catalog, model.SkillID(id), model.RankNovice); err != nil {
			return nil, fmt.Errorf("giving skill %d: %w", id, err)
		}
	}
	return cr.Skills().Infos(), nil
}

func parseInt64(s string) (int64, error) {
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return int64(u), nil
}
