package library

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"

	_ "modernc.org/sqlite"
)

// DatabaseFile is the Zotero database file name inside a data directory.
const DatabaseFile = "zotero.sqlite"

// Errors surfaced to the caller before any matching is attempted.
var (
	ErrDatabaseNotFound = errors.New("zotero database not found")
	ErrEmptyLibrary     = errors.New("zotero library contains no items")
)

var recordYearPattern = regexp.MustCompile(`\d{4}`)

// FindDatabase locates the Zotero database file. A non-empty custom path
// may point at the sqlite file itself or at a Zotero data directory.
// Otherwise the platform-standard locations are probed in order.
func FindDatabase(custom string) (string, error) {
	if custom != "" {
		info, err := os.Stat(custom)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrDatabaseNotFound, custom)
		}
		if info.IsDir() {
			p := filepath.Join(custom, DatabaseFile)
			if _, err := os.Stat(p); err != nil {
				return "", fmt.Errorf("%w: %s", ErrDatabaseNotFound, p)
			}
			return p, nil
		}
		return custom, nil
	}

	for _, p := range defaultDatabasePaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrDatabaseNotFound
}

// defaultDatabasePaths returns the standard Zotero data locations for the
// current platform, most common first.
func defaultDatabasePaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, "Zotero", DatabaseFile),
		filepath.Join(home, ".zotero", "zotero", DatabaseFile),
		filepath.Join(home, "snap", "zotero-snap", "common", "Zotero", DatabaseFile),
	}
	switch runtime.GOOS {
	case "darwin":
		paths = append(paths, filepath.Join(home, "Library", "Application Support", "Zotero", DatabaseFile))
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			paths = append(paths, filepath.Join(appdata, "Zotero", "Zotero", DatabaseFile))
		}
	}
	return paths
}

// Load reads the full library snapshot from the database at dbPath.
//
// The database is copied to a temporary file first: Zotero holds a lock on
// its own database while running, and reading the copy keeps this tool from
// ever touching the live file. The copy is removed before Load returns.
func Load(dbPath string) (*Snapshot, error) {
	tmp, err := copyDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return nil, fmt.Errorf("opening database copy: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	snap := &Snapshot{}
	if err := loadAccount(db, snap); err != nil {
		return nil, err
	}

	groupIDs, err := loadGroups(db)
	if err != nil {
		return nil, err
	}

	if err := loadItems(db, snap); err != nil {
		return nil, err
	}
	if len(snap.Records) == 0 {
		return nil, ErrEmptyLibrary
	}

	for i := range snap.Records {
		snap.Records[i].URIForms = uriForms(&snap.Records[i], snap, groupIDs)
	}
	return snap, nil
}

// copyDatabase copies the database file aside and returns the copy's path.
func copyDatabase(dbPath string) (string, error) {
	src, err := os.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "relink-zotero-*.sqlite")
	if err != nil {
		return "", fmt.Errorf("creating database copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("copying database: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("copying database: %w", err)
	}
	return dst.Name(), nil
}

// loadAccount reads the account identity rows used for URI construction.
func loadAccount(db *sql.DB, snap *Snapshot) error {
	rows, err := db.Query(`SELECT key, value FROM settings WHERE setting = 'account'`)
	if err != nil {
		return fmt.Errorf("reading account settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("reading account settings: %w", err)
		}
		switch key {
		case "userID":
			snap.UserID = value
		case "localUserKey":
			snap.LocalUserKey = value
		}
	}
	return rows.Err()
}

// loadGroups maps library IDs to zotero.org group IDs. Profiles without a
// groups table (older schemas) yield an empty map.
func loadGroups(db *sql.DB) (map[int64]int64, error) {
	groups := make(map[int64]int64)
	rows, err := db.Query(`SELECT libraryID, groupID FROM groups`)
	if err != nil {
		return groups, nil
	}
	defer rows.Close()

	for rows.Next() {
		var libraryID, groupID int64
		if err := rows.Scan(&libraryID, &groupID); err != nil {
			return nil, fmt.Errorf("reading groups: %w", err)
		}
		groups[libraryID] = groupID
	}
	return groups, rows.Err()
}

// itemQuery pulls every live, citable item with its flattened field values.
// Attachments, notes and trashed items never resolve citations.
const itemQuery = `
	SELECT
		i.itemID,
		i.key,
		i.libraryID,
		(SELECT value FROM itemDataValues idv
		 JOIN itemData id ON idv.valueID = id.valueID
		 JOIN fields f ON id.fieldID = f.fieldID
		 WHERE id.itemID = i.itemID AND f.fieldName = 'title') AS title,
		(SELECT value FROM itemDataValues idv
		 JOIN itemData id ON idv.valueID = id.valueID
		 JOIN fields f ON id.fieldID = f.fieldID
		 WHERE id.itemID = i.itemID AND f.fieldName = 'date') AS date,
		(SELECT value FROM itemDataValues idv
		 JOIN itemData id ON idv.valueID = id.valueID
		 JOIN fields f ON id.fieldID = f.fieldID
		 WHERE id.itemID = i.itemID AND f.fieldName = 'DOI') AS doi,
		(SELECT value FROM itemDataValues idv
		 JOIN itemData id ON idv.valueID = id.valueID
		 JOIN fields f ON id.fieldID = f.fieldID
		 WHERE id.itemID = i.itemID AND f.fieldName = 'ISBN') AS isbn
	FROM items i
	JOIN itemTypes it ON i.itemTypeID = it.itemTypeID
	WHERE i.itemID NOT IN (SELECT itemID FROM deletedItems)
	AND it.typeName NOT IN ('attachment', 'note', 'annotation')
	ORDER BY i.itemID`

const creatorQuery = `
	SELECT c.lastName, ct.creatorType
	FROM itemCreators ic
	JOIN creators c ON ic.creatorID = c.creatorID
	JOIN creatorTypes ct ON ic.creatorTypeID = ct.creatorTypeID
	WHERE ic.itemID = ?
	ORDER BY ic.orderIndex`

// loadItems reads all citable items with their creators, in itemID order so
// two loads of the same database produce the same record sequence.
func loadItems(db *sql.DB, snap *Snapshot) error {
	creatorsStmt, err := db.Prepare(creatorQuery)
	if err != nil {
		return fmt.Errorf("preparing creators query: %w", err)
	}
	defer creatorsStmt.Close()

	rows, err := db.Query(itemQuery)
	if err != nil {
		return fmt.Errorf("reading items: %w", err)
	}
	defer rows.Close()

	type pending struct {
		itemID int64
		rec    Record
		date   string
	}
	var items []pending

	for rows.Next() {
		var (
			itemID, libraryID      int64
			key                    string
			title, date, doi, isbn sql.NullString
		)
		if err := rows.Scan(&itemID, &key, &libraryID, &title, &date, &doi, &isbn); err != nil {
			return fmt.Errorf("reading items: %w", err)
		}
		items = append(items, pending{
			itemID: itemID,
			date:   date.String,
			rec: Record{
				Key:       key,
				Title:     title.String,
				DOI:       doi.String,
				ISBN:      isbn.String,
				libraryID: libraryID,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading items: %w", err)
	}

	for _, p := range items {
		rec := p.rec
		rec.Authors, err = loadCreators(creatorsStmt, p.itemID)
		if err != nil {
			return err
		}
		if m := recordYearPattern.FindString(p.date); m != "" {
			rec.Year, _ = strconv.Atoi(m)
		}
		snap.Records = append(snap.Records, rec)
	}
	return nil
}

func loadCreators(stmt *sql.Stmt, itemID int64) ([]string, error) {
	rows, err := stmt.Query(itemID)
	if err != nil {
		return nil, fmt.Errorf("reading creators for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var authors []string
	for rows.Next() {
		var lastName sql.NullString
		var creatorType string
		if err := rows.Scan(&lastName, &creatorType); err != nil {
			return nil, fmt.Errorf("reading creators for item %d: %w", itemID, err)
		}
		if creatorType != "author" && creatorType != "editor" {
			continue
		}
		if lastName.String != "" {
			authors = append(authors, lastName.String)
		}
	}
	return authors, rows.Err()
}

// uriForms enumerates every URI spelling that should resolve to a record.
func uriForms(rec *Record, snap *Snapshot, groupIDs map[int64]int64) []string {
	var prefixes []string
	if groupID, ok := groupIDs[rec.libraryID]; ok {
		prefixes = append(prefixes, fmt.Sprintf("zotero.org/groups/%d", groupID))
	} else {
		if snap.UserID != "" {
			prefixes = append(prefixes, fmt.Sprintf("zotero.org/users/%s", snap.UserID))
		}
		if snap.LocalUserKey != "" {
			prefixes = append(prefixes, fmt.Sprintf("zotero.org/users/local/%s", snap.LocalUserKey))
		}
		prefixes = append(prefixes, "zotero.org/users/local")
	}

	forms := make([]string, 0, len(prefixes)*2)
	for _, p := range prefixes {
		forms = append(forms,
			fmt.Sprintf("http://%s/items/%s", p, rec.Key),
			fmt.Sprintf("https://%s/items/%s", p, rec.Key),
		)
	}
	return forms
}
