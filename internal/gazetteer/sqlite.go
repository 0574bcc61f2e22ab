package gazetteer

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// The sqlite store is an optional import of the flat gazetteer file: parsing
// a multi-megabyte TSV on every start is wasteful, so `gazetteer import`
// loads it once and the engine reads the indexed table afterwards.

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS places (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	lat         REAL NOT NULL,
	lon         REAL NOT NULL,
	class       TEXT NOT NULL,
	country     TEXT NOT NULL,
	admin1      TEXT NOT NULL DEFAULT '',
	admin2      TEXT NOT NULL DEFAULT '',
	admin3      TEXT NOT NULL DEFAULT '',
	population  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS imports (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	place_count INTEGER NOT NULL,
	imported_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_places_country ON places(country);
CREATE INDEX IF NOT EXISTS idx_places_class ON places(class);
`

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "gazetteer: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "gazetteer: exec %s", pragma)
		}
	}
	return db, nil
}

// ImportTSV replaces the places table of the sqlite database at dbPath with
// the contents of a GeoNames-style TSV, and records the run in the imports
// table. Returns the number of places imported.
func ImportTSV(ctx context.Context, dbPath, tsvPath string) (int, error) {
	f, err := os.Open(tsvPath)
	if err != nil {
		return 0, eris.Wrapf(err, "gazetteer: open %s", tsvPath)
	}
	defer func() { _ = f.Close() }()

	places, skipped, err := ParseAll(ctx, f)
	if err != nil {
		return 0, err
	}

	db, err := openSQLite(dbPath)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		return 0, eris.Wrap(err, "gazetteer: migrate sqlite")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "gazetteer: begin import")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM places"); err != nil {
		return 0, eris.Wrap(err, "gazetteer: clear places")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO places (id, name, lat, lon, class, country, admin1, admin2, admin3, population)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "gazetteer: prepare insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range places {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Lat, p.Lon, string(p.Class.Letter()),
			p.CountryCode, p.Admin1, p.Admin2, p.Admin3, p.Population,
		); err != nil {
			return 0, eris.Wrapf(err, "gazetteer: insert place %d", p.ID)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO imports (id, source, place_count, imported_at)
		VALUES (?, ?, ?, ?)`,
		uuid.NewString(), tsvPath, len(places), time.Now().UTC(),
	); err != nil {
		return 0, eris.Wrap(err, "gazetteer: record import")
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "gazetteer: commit import")
	}

	zap.L().Info("gazetteer imported",
		zap.String("db", dbPath),
		zap.String("source", tsvPath),
		zap.Int("places", len(places)),
		zap.Int("skipped", skipped),
	)
	return len(places), nil
}

// LoadFromDB fills the engine from a previously imported sqlite database.
// Like LoadFromFile, a missing or unreadable database leaves the engine
// empty without error; only cancellation is surfaced.
func (e *Engine) LoadFromDB(ctx context.Context, dbPath string) error {
	log := zap.L().With(zap.String("component", "gazetteer.engine"))

	if _, err := os.Stat(dbPath); err != nil {
		log.Warn("gazetteer database unavailable, engine stays empty",
			zap.String("path", dbPath),
			zap.Error(err),
		)
		return nil
	}

	db, err := openSQLite(dbPath)
	if err != nil {
		log.Warn("gazetteer database unreadable, engine stays empty",
			zap.String("path", dbPath),
			zap.Error(err),
		)
		return nil
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, lat, lon, class, country, admin1, admin2, admin3, population
		FROM places ORDER BY id`)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("gazetteer query failed, engine stays empty",
			zap.String("path", dbPath),
			zap.Error(err),
		)
		return nil
	}
	defer func() { _ = rows.Close() }()

	var places []Place
	for rows.Next() {
		var p Place
		var class string
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Lat, &p.Lon, &class,
			&p.CountryCode, &p.Admin1, &p.Admin2, &p.Admin3, &p.Population,
		); err != nil {
			return eris.Wrap(err, "gazetteer: scan place row")
		}
		if class != "" {
			p.Class = ParseFeatureClass(class[0])
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return eris.Wrap(err, "gazetteer: iterate place rows")
	}

	e.SetPlaces(places)
	log.Info("gazetteer loaded from sqlite",
		zap.String("path", dbPath),
		zap.Int("places", len(places)),
	)
	return nil
}
