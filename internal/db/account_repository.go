package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/protocol"
)

// AccountRepository loads and saves accounts, their characters and the
// characters' skill progress.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// LoadAccount loads an account by id.
// Returns nil, nil if the account does not exist.
func (r *AccountRepository) LoadAccount(ctx context.Context, accountID string) (*model.Account, error) {
	var (
		acc       model.Account
		lastLogin *time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT account_id, session_key, authority, last_login, last_ip
		 FROM accounts WHERE account_id = $1`, accountID,
	).Scan(&acc.ID, &acc.SessionKey, &acc.Authority, &lastLogin, &acc.LastIP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account %q: %w", accountID, err)
	}
	if lastLogin != nil {
		acc.LastLogin = *lastLogin
	}
	return &acc, nil
}

// CreateAccount inserts a new account.
func (r *AccountRepository) CreateAccount(ctx context.Context, acc *model.Account) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO accounts (account_id, session_key, authority, last_ip)
		 VALUES ($1, $2, $3, $4)`,
		acc.ID, acc.SessionKey, acc.Authority, acc.LastIP,
	)
	if err != nil {
		return fmt.Errorf("creating account %q: %w", acc.ID, err)
	}
	return nil
}

// UpdateSessionKey stores the key the login server handed to the client.
func (r *AccountRepository) UpdateSessionKey(ctx context.Context, accountID string, key int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET session_key = $1 WHERE account_id = $2`, key, accountID)
	if err != nil {
		return fmt.Errorf("updating session key for %q: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating session key: account %q not found", accountID)
	}
	return nil
}

// CreateCharacter inserts a character and its skills.
func (r *AccountRepository) CreateCharacter(ctx context.Context, accountID string, rec *model.CharacterRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO characters (entity_id, account_id, name, race, region_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.EntityID, accountID, rec.Name, int32(rec.Race), rec.RegionID,
	); err != nil {
		return fmt.Errorf("inserting character %q: %w", rec.Name, err)
	}

	if err := replaceSkills(ctx, tx, rec.EntityID, rec.Skills); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing character %q: %w", rec.Name, err)
	}
	return nil
}

// LoadCharacter loads one character of an account with its skills.
// Returns nil, nil if the account has no such character.
func (r *AccountRepository) LoadCharacter(ctx context.Context, accountID string, entityID int64) (*model.CharacterRecord, error) {
	var (
		rec  model.CharacterRecord
		race int32
	)
	err := r.db.QueryRow(ctx,
		`SELECT entity_id, name, race, region_id
		 FROM characters WHERE entity_id = $1 AND account_id = $2`,
		entityID, accountID,
	).Scan(&rec.EntityID, &rec.Name, &race, &rec.RegionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying character 0x%016X: %w", entityID, err)
	}
	rec.Race = model.Race(race)

	skills, err := r.loadSkills(ctx, entityID)
	if err != nil {
		return nil, err
	}
	rec.Skills = skills
	return &rec, nil
}

func (r *AccountRepository) loadSkills(ctx context.Context, entityID int64) ([]model.SkillInfo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT skill_id, rank, experience, conditions, flags
		 FROM character_skills
		 WHERE entity_id = $1
		 ORDER BY skill_id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying skills for character 0x%016X: %w", entityID, err)
	}
	defer rows.Close()

	skills := make([]model.SkillInfo, 0, 32)
	for rows.Next() {
		var (
			id, flags  int32
			rank       int16
			experience int32
			conditions []int16
		)
		if err := rows.Scan(&id, &rank, &experience, &conditions, &flags); err != nil {
			return nil, fmt.Errorf("scanning skill row: %w", err)
		}

		info := model.SkillInfo{
			ID:         model.SkillID(id),
			Rank:       model.SkillRank(rank),
			Experience: experience,
			Flags:      protocol.DecodeSkillFlags(uint16(flags)),
		}
		copy(info.ConditionCount[:], conditions)
		skills = append(skills, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skill rows: %w", err)
	}
	return skills, nil
}

// SaveAccount stores the account's login info and, for every live character,
// its region and skills (full rewrite), in one transaction. Disposed
// characters are skipped: their skill set is already dropped.
func (r *AccountRepository) SaveAccount(ctx context.Context, acc *model.Account) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var lastLogin *time.Time
	if !acc.LastLogin.IsZero() {
		lastLogin = &acc.LastLogin
	}
	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET authority = $1, last_login = $2, last_ip = $3 WHERE account_id = $4`,
		acc.Authority, lastLogin, acc.LastIP, acc.ID,
	); err != nil {
		return fmt.Errorf("updating account %q: %w", acc.ID, err)
	}

	for _, c := range acc.Characters {
		if c.IsDisposed() {
			continue
		}
		if region := c.Region(); region != nil {
			if _, err := tx.Exec(ctx,
				`UPDATE characters SET region_id = $1 WHERE entity_id = $2`,
				region.ID(), c.EntityID(),
			); err != nil {
				return fmt.Errorf("updating character %q: %w", c.Name(), err)
			}
		}
		if err := replaceSkills(ctx, tx, c.EntityID(), c.Skills().Infos()); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing account %q: %w", acc.ID, err)
	}
	return nil
}

// replaceSkills deletes a character's skills and inserts skills in one batch.
func replaceSkills(ctx context.Context, tx pgx.Tx, entityID int64, skills []model.SkillInfo) error {
	if _, err := tx.Exec(ctx, `DELETE FROM character_skills WHERE entity_id = $1`, entityID); err != nil {
		return fmt.Errorf("deleting skills of character 0x%016X: %w", entityID, err)
	}
	if len(skills) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range skills {
		batch.Queue(
			`INSERT INTO character_skills (entity_id, skill_id, rank, experience, conditions, flags)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			entityID, int32(s.ID), int16(s.Rank), s.Experience,
			s.ConditionCount[:], int32(protocol.EncodeSkillFlags(s.Flags)),
		)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close() //nolint:errcheck
	for range skills {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("inserting skills of character 0x%016X: %w", entityID, err)
		}
	}
	return nil
}
