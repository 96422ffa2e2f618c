package notionjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

const (
	pagesDir     = "pages"
	databasesDir = "databases"
	blocksDir    = "blocks"
	manifestFile = "snapshot.json"
	rowsSuffix   = ".rows.json"
)

// Snapshot is the parsed content of one snapshot directory. Children holds the
// block lists keyed by the page or block they were fetched for.
type Snapshot struct {
	Dir       string
	Root      notion.ID
	Pages     map[notion.PageID]notion.Page
	Databases map[notion.DatabaseID]notion.Database
	Children  map[notion.ID][]notion.Block
	Linked    map[notion.ID]bool
	// Inaccessible maps child database ids to the reason they could not be read.
	Inaccessible map[notion.ID]string
}

type manifest struct {
	Root         string            `json:"root"`
	Linked       []string          `json:"linked"`
	Inaccessible map[string]string `json:"inaccessible"`
}

type pageList struct {
	Results []notion.Page `json:"results"`
}

type blockList struct {
	Results []notion.Block `json:"results"`
}

// ReadSnapshot reads a directory laid out as:
//
//	snapshot.json                optional manifest
//	pages/<id>.json              page objects
//	databases/<id>.json          database objects
//	databases/<id>.rows.json     {"results": [page, ...]}
//	blocks/<parent-id>.json      {"results": [block, ...]}
func ReadSnapshot(dir string) (Snapshot, error) {
	s := Snapshot{
		Dir:          dir,
		Pages:        map[notion.PageID]notion.Page{},
		Databases:    map[notion.DatabaseID]notion.Database{},
		Children:     map[notion.ID][]notion.Block{},
		Linked:       map[notion.ID]bool{},
		Inaccessible: map[notion.ID]string{},
	}
	if info, err := os.Stat(dir); err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot dir: %w", err)
	} else if !info.IsDir() {
		return Snapshot{}, fmt.Errorf("read snapshot dir: %s is not a directory", dir)
	}

	if err := s.readManifest(filepath.Join(dir, manifestFile)); err != nil {
		return Snapshot{}, err
	}
	if err := s.readPages(filepath.Join(dir, pagesDir)); err != nil {
		return Snapshot{}, err
	}
	if err := s.readDatabases(filepath.Join(dir, databasesDir)); err != nil {
		return Snapshot{}, err
	}
	if err := s.readBlocks(filepath.Join(dir, blocksDir)); err != nil {
		return Snapshot{}, err
	}
	s.markChildDatabases()

	logrus.WithFields(logrus.Fields{
		"dir":       dir,
		"pages":     len(s.Pages),
		"databases": len(s.Databases),
		"parents":   len(s.Children),
	}).Debug("snapshot loaded")
	return s, nil
}

func (s *Snapshot) readManifest(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := validateEnvelope(envelopeManifest, path, raw); err != nil {
		return err
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if strings.TrimSpace(m.Root) != "" {
		root, err := notion.ParseID(m.Root)
		if err != nil {
			return fmt.Errorf("manifest root: %w", err)
		}
		s.Root = root
	}
	for _, raw := range m.Linked {
		id, err := notion.ParseID(raw)
		if err != nil {
			return fmt.Errorf("manifest linked: %w", err)
		}
		s.Linked[id] = true
	}
	for raw, reason := range m.Inaccessible {
		id, err := notion.ParseID(raw)
		if err != nil {
			return fmt.Errorf("manifest inaccessible: %w", err)
		}
		s.Inaccessible[id] = reason
	}
	return nil
}

func (s *Snapshot) readPages(dir string) error {
	paths, err := jsonFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		var page notion.Page
		if err := readDocument(envelopePage, path, &page); err != nil {
			return err
		}
		s.Pages[page.ID] = page
	}
	return nil
}

func (s *Snapshot) readDatabases(dir string) error {
	paths, err := jsonFiles(dir)
	if err != nil {
		return err
	}
	rows := map[notion.DatabaseID][]notion.Page{}
	for _, path := range paths {
		name := filepath.Base(path)
		if strings.HasSuffix(name, rowsSuffix) {
			id, err := notion.ParseDatabaseID(strings.TrimSuffix(name, rowsSuffix))
			if err != nil {
				return fmt.Errorf("rows file %s: %w", path, err)
			}
			var list pageList
			if err := readDocument(envelopeRows, path, &list); err != nil {
				return err
			}
			rows[id] = list.Results
			continue
		}
		var db notion.Database
		if err := readDocument(envelopeDatabase, path, &db); err != nil {
			return err
		}
		s.Databases[db.ID] = db
	}
	for id, pages := range rows {
		db, ok := s.Databases[id]
		if !ok {
			logrus.WithField("database", id.String()).Warn("rows file without database object")
			continue
		}
		db.Pages = pages
		s.Databases[id] = db
	}
	return nil
}

func (s *Snapshot) readBlocks(dir string) error {
	paths, err := jsonFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		parent, err := notion.ParseID(strings.TrimSuffix(filepath.Base(path), ".json"))
		if err != nil {
			return fmt.Errorf("blocks file %s: %w", path, err)
		}
		var list blockList
		if err := readDocument(envelopeBlockList, path, &list); err != nil {
			return err
		}
		s.Children[parent] = list.Results
	}
	return nil
}

// markChildDatabases records manifest states on child_database blocks.
func (s *Snapshot) markChildDatabases() {
	for parent, blocks := range s.Children {
		changed := false
		out := make([]notion.Block, len(blocks))
		for i, b := range blocks {
			out[i] = b
			if b.Type != notion.BlockChildDatabase || b.ChildDatabase == nil {
				continue
			}
			id := notion.ID(b.ID)
			content := *b.ChildDatabase
			switch {
			case s.Linked[id]:
				content.State = notion.DatabaseLinked
			case s.Inaccessible[id] != "":
				content.State = notion.DatabaseInaccessible
				content.Reason = s.Inaccessible[id]
			default:
				continue
			}
			out[i].ChildDatabase = &content
			changed = true
		}
		if changed {
			s.Children[parent] = out
		}
	}
}

// Object resolves id to a page or database of the snapshot.
func (s Snapshot) Object(id notion.ID) (notion.Object, error) {
	if page, ok := s.Pages[notion.PageID(id)]; ok {
		return notion.Object{Page: &page}, nil
	}
	if db, ok := s.Databases[notion.DatabaseID(id)]; ok {
		return notion.Object{Database: &db}, nil
	}
	return notion.Object{}, fmt.Errorf("object %s not found in snapshot %s", id, s.Dir)
}

// BlockCount counts every block list entry in the snapshot.
func (s Snapshot) BlockCount() int {
	n := 0
	for _, blocks := range s.Children {
		n += len(blocks)
	}
	return n
}

// PageIDs returns page ids in sorted order.
func (s Snapshot) PageIDs() []notion.PageID {
	out := make([]notion.PageID, 0, len(s.Pages))
	for id := range s.Pages {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	out := make([]string, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		out = append(out, filepath.Join(dir, ent.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func readDocument(kind envelope, path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := validateEnvelope(kind, path, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
