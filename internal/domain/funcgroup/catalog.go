package funcgroup

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/turtacn/funcgroup/pkg/errors"
)

// Entry is one (pattern, name) pair of a catalog source.
type Entry struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Name    string `json:"name" yaml:"name"`
}

// defaultEntries is the built-in catalog.  Order matters: it is the discovery
// order of raw matches and therefore decides which of two equivalent matches
// survives repetition filtering.  Alcohol and primary amine are derived
// structurally and have no entry here.
var defaultEntries = []Entry{
	{"RC(=O)O", "CarboxylicAcid"},
	{"RC(=O)[O-]", "Carboxylate"},
	{"RC(=O)OC(=O)R", "Anhydride"},
	{"RC(=O)OR", "Ester"},
	{"RC(=O)Cl", "AcylHalide"},
	{"RC(=O)N", "PrimaryAmide"},
	{"RC(=O)NR", "SecondaryAmide"},
	{"RC(=O)N(R)R", "TertiaryAmide"},
	{"RC=O", "Aldehyde"},
	{"RC(=O)R", "Ketone"},
	{"ROR", "Ether"},
	{"RNR", "SecondaryAmine"},
	{"RN(R)R", "TertiaryAmine"},
	{"RC#N", "Nitrile"},
	{"R[N+](=O)[O-]", "Nitro"},
	{"RN=C=O", "Isocyanate"},
	{"RC=NR", "Imine"},
	{"RN=NR", "Azo"},
	{"RS", "Thiol"},
	{"RSR", "Sulfide"},
	{"RS(=O)R", "Sulfoxide"},
	{"RS(=O)(=O)R", "Sulfone"},
	{"RS(=O)(=O)O", "SulfonicAcid"},
	{"RC=CR", "Alkene"},
	{"RC#CR", "Alkyne"},
	{"RF", "Fluoride"},
	{"RCl", "Chloride"},
	{"RBr", "Bromide"},
	{"RI", "Iodide"},
}

// DefaultEntries returns a copy of the built-in catalog source.
func DefaultEntries() []Entry {
	out := make([]Entry, len(defaultEntries))
	copy(out, defaultEntries)
	return out
}

// Catalog is an ordered, immutable set of parsed templates.
type Catalog struct {
	entries     []Entry
	templates   []*Template
	fingerprint string
}

// NewCatalog parses every entry.  The first invalid entry aborts with
// CodeTemplate; an empty list yields CodeCatalogEmpty.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.CodeCatalogEmpty, "catalog has no entries")
	}
	c := &Catalog{
		entries:   make([]Entry, 0, len(entries)),
		templates: make([]*Template, 0, len(entries)),
	}
	h := sha256.New()
	for i, e := range entries {
		t, err := NewTemplate(e.Pattern, e.Name)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeTemplate, fmt.Sprintf("catalog entry %d", i+1))
		}
		c.entries = append(c.entries, Entry{Pattern: t.Pattern, Name: t.Name})
		c.templates = append(c.templates, t)
		fmt.Fprintf(h, "%s\t%s\n", t.Pattern, t.Name)
	}
	c.fingerprint = hex.EncodeToString(h.Sum(nil))
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the shared built-in catalog.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := NewCatalog(defaultEntries)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalog reads a catalog from text lines of the form "PATTERN NAME".
// Blank lines and lines starting with '#' are ignored.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, errors.New(errors.CodeTemplate, "catalog line must be PATTERN NAME").
				WithDetailf("line=%d text=%q", line, text)
		}
		entries = append(entries, Entry{Pattern: fields[0], Name: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to read catalog")
	}
	return NewCatalog(entries)
}

// Templates returns the parsed templates in catalog order.
func (c *Catalog) Templates() []*Template {
	out := make([]*Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Entries returns the normalised (pattern, name) pairs in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Fingerprint is the hex sha256 of the ordered pairs.  Two catalogs with the
// same fingerprint produce identical analyses.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}
