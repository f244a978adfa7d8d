package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"
)

// manifest records where a scrape came from and what it produced, so a
// rerun can be compared against the same listing snapshot.
type manifest struct {
	Source      string    `json:"source"`
	Layout      string    `json:"layout"`
	SHA256      string    `json:"sha256"`
	Bytes       int       `json:"bytes"`
	Papers      int       `json:"papers"`
	Outputs     []string  `json:"outputs"`
	Version     string    `json:"version"`
	Commit      string    `json:"commit"`
	GeneratedAt time.Time `json:"generated_at"`
}

func computeSHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func buildManifest(r ScrapeReport, doc []byte) manifest {
	return manifest{
		Source:      r.Source,
		Layout:      r.Layout,
		SHA256:      computeSHA256Hex(doc),
		Bytes:       len(doc),
		Papers:      len(r.Records),
		Outputs:     append([]string{}, r.Outputs...),
		Version:     BuildVersion,
		Commit:      BuildCommit,
		GeneratedAt: time.Now().UTC(),
	}
}

func writeManifest(path string, r ScrapeReport, doc []byte) error {
	b, err := json.MarshalIndent(buildManifest(r, doc), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
