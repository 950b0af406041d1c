package library

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// fixtureSchema is the minimal slice of the Zotero schema the loader reads.
const fixtureSchema = `
	CREATE TABLE settings (setting TEXT, key TEXT, value TEXT);
	CREATE TABLE groups (libraryID INTEGER, groupID INTEGER);
	CREATE TABLE itemTypes (itemTypeID INTEGER PRIMARY KEY, typeName TEXT);
	CREATE TABLE items (itemID INTEGER PRIMARY KEY, key TEXT, libraryID INTEGER, itemTypeID INTEGER);
	CREATE TABLE deletedItems (itemID INTEGER PRIMARY KEY);
	CREATE TABLE fields (fieldID INTEGER PRIMARY KEY, fieldName TEXT);
	CREATE TABLE itemDataValues (valueID INTEGER PRIMARY KEY, value TEXT);
	CREATE TABLE itemData (itemID INTEGER, fieldID INTEGER, valueID INTEGER);
	CREATE TABLE creatorTypes (creatorTypeID INTEGER PRIMARY KEY, creatorType TEXT);
	CREATE TABLE creators (creatorID INTEGER PRIMARY KEY, firstName TEXT, lastName TEXT);
	CREATE TABLE itemCreators (itemID INTEGER, creatorID INTEGER, creatorTypeID INTEGER, orderIndex INTEGER);
`

const fixtureData = `
	INSERT INTO settings VALUES ('account', 'userID', '42');
	INSERT INTO settings VALUES ('account', 'localUserKey', 'localkey1');

	INSERT INTO groups VALUES (2, 777);

	INSERT INTO itemTypes VALUES (1, 'journalArticle');
	INSERT INTO itemTypes VALUES (2, 'book');
	INSERT INTO itemTypes VALUES (3, 'attachment');
	INSERT INTO itemTypes VALUES (4, 'note');

	INSERT INTO fields VALUES (1, 'title');
	INSERT INTO fields VALUES (2, 'date');
	INSERT INTO fields VALUES (3, 'DOI');
	INSERT INTO fields VALUES (4, 'ISBN');

	INSERT INTO creatorTypes VALUES (1, 'author');
	INSERT INTO creatorTypes VALUES (2, 'editor');
	INSERT INTO creatorTypes VALUES (3, 'translator');

	-- User-library journal article with two authors, a date and a DOI.
	INSERT INTO items VALUES (100, 'ARTICLE1', 1, 1);
	INSERT INTO itemDataValues VALUES (1, 'Non-exhaust traffic emissions');
	INSERT INTO itemData VALUES (100, 1, 1);
	INSERT INTO itemDataValues VALUES (2, '2021-06-15');
	INSERT INTO itemData VALUES (100, 2, 2);
	INSERT INTO itemDataValues VALUES (3, '10.1016/j.scitotenv.2020.144440');
	INSERT INTO itemData VALUES (100, 3, 3);
	INSERT INTO creators VALUES (1, 'Roy', 'Harrison');
	INSERT INTO creators VALUES (2, 'James', 'Allan');
	INSERT INTO creators VALUES (3, 'X', 'Translator');
	INSERT INTO itemCreators VALUES (100, 1, 1, 0);
	INSERT INTO itemCreators VALUES (100, 2, 1, 1);
	INSERT INTO itemCreators VALUES (100, 3, 3, 2);

	-- Group-library book with an ISBN.
	INSERT INTO items VALUES (101, 'GBOOK001', 2, 2);
	INSERT INTO itemDataValues VALUES (4, 'A Group Book');
	INSERT INTO itemData VALUES (101, 1, 4);
	INSERT INTO itemDataValues VALUES (5, '978-0-201-89683-1');
	INSERT INTO itemData VALUES (101, 4, 5);

	-- Attachment, note and trashed item must all be skipped.
	INSERT INTO items VALUES (102, 'ATTACH01', 1, 3);
	INSERT INTO items VALUES (103, 'NOTE0001', 1, 4);
	INSERT INTO items VALUES (104, 'TRASHED1', 1, 1);
	INSERT INTO deletedItems VALUES (104);
`

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "zotero.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(fixtureSchema); err != nil {
		t.Fatalf("creating fixture schema: %v", err)
	}
	if _, err := db.Exec(fixtureData); err != nil {
		t.Fatalf("inserting fixture data: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if snap.UserID != "42" || snap.LocalUserKey != "localkey1" {
		t.Errorf("account = %q / %q, want 42 / localkey1", snap.UserID, snap.LocalUserKey)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("got %d records, want 2 (attachments, notes, trash skipped)", len(snap.Records))
	}

	art := snap.Records[0]
	if art.Key != "ARTICLE1" {
		t.Fatalf("first record key = %s, want ARTICLE1", art.Key)
	}
	if art.Title != "Non-exhaust traffic emissions" {
		t.Errorf("Title = %q", art.Title)
	}
	if art.Year != 2021 {
		t.Errorf("Year = %d, want 2021", art.Year)
	}
	if art.DOI != "10.1016/j.scitotenv.2020.144440" {
		t.Errorf("DOI = %q", art.DOI)
	}
	if len(art.Authors) != 2 || art.Authors[0] != "Harrison" || art.Authors[1] != "Allan" {
		t.Errorf("Authors = %v, want [Harrison Allan] (translator excluded)", art.Authors)
	}

	book := snap.Records[1]
	if book.Key != "GBOOK001" || book.ISBN != "978-0-201-89683-1" {
		t.Errorf("second record = %+v", book)
	}
}

func TestLoad_URIForms(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	hasForm := func(rec Record, uri string) bool {
		for _, f := range rec.URIForms {
			if f == uri {
				return true
			}
		}
		return false
	}

	art := snap.Records[0]
	for _, want := range []string{
		"http://zotero.org/users/42/items/ARTICLE1",
		"https://zotero.org/users/42/items/ARTICLE1",
		"http://zotero.org/users/local/localkey1/items/ARTICLE1",
	} {
		if !hasForm(art, want) {
			t.Errorf("user record missing URI form %s (have %v)", want, art.URIForms)
		}
	}

	book := snap.Records[1]
	if !hasForm(book, "http://zotero.org/groups/777/items/GBOOK001") {
		t.Errorf("group record missing group URI form (have %v)", book.URIForms)
	}
	if hasForm(book, "http://zotero.org/users/42/items/GBOOK001") {
		t.Error("group record must not carry a user URI form")
	}
}

func TestLoad_EmptyLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zotero.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(fixtureSchema); err != nil {
		t.Fatal(err)
	}
	db.Close()

	_, err = Load(path)
	if !errors.Is(err, ErrEmptyLibrary) {
		t.Errorf("got %v, want ErrEmptyLibrary", err)
	}
}

func TestLoad_LeavesOriginalUntouched(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("loading modified the original database file")
	}
}

func TestFindDatabase_CustomPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir)

	// Direct file path.
	got, err := FindDatabase(path)
	if err != nil || got != path {
		t.Errorf("file path: got %q, %v", got, err)
	}

	// Data directory containing zotero.sqlite.
	got, err = FindDatabase(dir)
	if err != nil || got != path {
		t.Errorf("dir path: got %q, %v", got, err)
	}

	// Missing path.
	if _, err := FindDatabase(filepath.Join(dir, "nope")); !errors.Is(err, ErrDatabaseNotFound) {
		t.Errorf("missing path: got %v, want ErrDatabaseNotFound", err)
	}
}

func TestSnapshotBaseURI(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{"web user", Snapshot{UserID: "42", LocalUserKey: "k"}, "http://zotero.org/users/42"},
		{"local profile", Snapshot{LocalUserKey: "k"}, "http://zotero.org/users/local/k"},
		{"bare local", Snapshot{}, "http://zotero.org/users/local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.BaseURI(); got != tt.want {
				t.Errorf("BaseURI = %q, want %q", got, tt.want)
			}
		})
	}
}
