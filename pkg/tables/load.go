package tables

import (
	"bytes"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/unklstewy/b200-landing/pkg/config"
	"github.com/unklstewy/b200-landing/pkg/landing"
)

//go:embed data/*.csv
var embedded embed.FS

// Set is a loaded table set together with the fingerprint of the data it
// was built from.
type Set struct {
	landing.Tables

	// Fingerprint identifies the source files and load settings; equal
	// fingerprints mean identical tables
	Fingerprint uint64
}

// ID returns the fingerprint as 16 hex digits, the form stored with
// calculation history.
func (s *Set) ID() string {
	return fmt.Sprintf("%016x", s.Fingerprint)
}

// SampleNotice warns that the embedded dataset is not chart data.
const SampleNotice = "Using built-in sample tables: illustrative values, not from the B200 POH. Do not use for flight planning."

// IsSample reports whether cfg selects the embedded sample dataset.
func IsSample(cfg config.TablesConfig) bool {
	return cfg.Dir == ""
}

// Source returns the file system the configuration points at: the
// directory when one is set, else the embedded sample dataset.
func Source(cfg config.TablesConfig) fs.FS {
	if cfg.Dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			// The embed pattern guarantees the directory exists.
			panic(err)
		}
		return sub
	}
	return os.DirFS(cfg.Dir)
}

// Default loads the embedded sample dataset with the default settings.
func Default() (*Set, error) {
	return Load(Source(config.TablesConfig{}), config.DefaultConfig().Tables)
}

// LoadConfig loads the tables the configuration points at.
func LoadConfig(cfg config.TablesConfig) (*Set, error) {
	return Load(Source(cfg), cfg)
}

// Load reads and parses the four tables from fsys.
func Load(fsys fs.FS, cfg config.TablesConfig) (*Set, error) {
	raw, err := readRaw(fsys, cfg)
	if err != nil {
		return nil, err
	}
	return parse(raw, cfg)
}

// rawFiles holds the four table files in pipeline order.
type rawFiles [4][]byte

func readRaw(fsys fs.FS, cfg config.TablesConfig) (rawFiles, error) {
	var raw rawFiles
	for i, name := range []string{cfg.PressureOATFile, cfg.WeightFile, cfg.WindFile, cfg.ObstacleFile} {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return raw, fmt.Errorf("failed to read table file %s: %w", name, err)
		}
		raw[i] = data
	}
	return raw, nil
}

// fingerprint hashes the raw files and the settings that change how they
// are parsed.
func fingerprint(raw rawFiles, cfg config.TablesConfig) uint64 {
	h := xxh3.New()
	var n [8]byte
	for _, data := range raw {
		binary.LittleEndian.PutUint64(n[:], uint64(len(data)))
		h.Write(n[:])
		h.Write(data)
	}
	h.WriteString(strconv.Itoa(cfg.HeaderSkipRows))
	h.WriteString("|" + strconv.FormatFloat(cfg.MaxWeightLb, 'f', -1, 64))
	h.WriteString("|" + strconv.FormatFloat(cfg.ObstacleHeightFt, 'f', -1, 64))
	return h.Sum64()
}

func parse(raw rawFiles, cfg config.TablesConfig) (*Set, error) {
	maxWeight := cfg.MaxWeightLb
	if maxWeight == 0 {
		maxWeight = landing.MaxWeightLb
	}
	obstacle := cfg.ObstacleHeightFt
	if obstacle == 0 {
		obstacle = landing.ObstacleHeightFt
	}

	pressureOAT, err := parseGrid(raw[0], cfg.HeaderSkipRows)
	if err != nil {
		return nil, err
	}
	weight, err := parseRefTable(landing.TableWeight, raw[1], maxWeight)
	if err != nil {
		return nil, err
	}
	wind, err := parseRefTable(landing.TableWind, raw[2], landing.ZeroWindKt)
	if err != nil {
		return nil, err
	}
	obst, err := parseRefTable(landing.TableObstacle, raw[3], landing.ObstacleBaseFt, obstacle)
	if err != nil {
		return nil, err
	}

	return &Set{
		Tables: landing.Tables{
			PressureOAT:      pressureOAT,
			Weight:           weight,
			Wind:             wind,
			Obstacle:         obst,
			ObstacleHeightFt: obstacle,
		},
		Fingerprint: fingerprint(raw, cfg),
	}, nil
}

// parseGrid reads the pressure altitude x OAT table. After the skipped rows
// the header holds a label column, the pressure altitude label and then the
// OAT keys; data rows mirror that layout.
func parseGrid(data []byte, skip int) (*landing.Grid, error) {
	header, rows, err := ReadCSV(bytes.NewReader(data), skip)
	if err != nil {
		return nil, &landing.MalformedTableError{Table: landing.TablePressureOAT, Reason: err.Error()}
	}
	if len(header) < 2 {
		return nil, &landing.MalformedTableError{Table: landing.TablePressureOAT, Reason: "missing pressure altitude column"}
	}

	body := make([][]string, len(rows))
	for i, r := range rows {
		body[i] = dropFirst(r)
	}
	return landing.NewGrid(landing.TablePressureOAT, header[2:], body)
}

func parseRefTable(name string, data []byte, reference float64, required ...float64) (*landing.RefTable, error) {
	header, rows, err := ReadCSV(bytes.NewReader(data), 0)
	if err != nil {
		return nil, &landing.MalformedTableError{Table: name, Reason: err.Error()}
	}
	return landing.NewRefTable(name, header, rows, reference, required...)
}

func dropFirst(r []string) []string {
	if len(r) == 0 {
		return r
	}
	return r[1:]
}
