package inputsign

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mahdiidarabi/inputsign/internal/decode"
)

// JobParser defines the interface for reading signing jobs from various
// sources.
type JobParser interface {
	// ParseJobs parses the jobs found in source and returns them in order.
	ParseJobs(source string) ([]*Request, error)
}

// Default field and column names of a job.
const (
	defaultTxField      = "tx"
	defaultIndexField   = "index"
	defaultScriptField  = "script"
	defaultKeyField     = "key"
	defaultSighashField = "sighash"
	defaultNonceField   = "nonce"
)

// jobFields names the fields of one job. Empty names fall back to the
// defaults above.
type jobFields struct {
	tx, index, script, key, sighash, nonce string
}

func (f jobFields) withDefaults() jobFields {
	pick := func(name, def string) string {
		if name == "" {
			return def
		}
		return name
	}
	return jobFields{
		tx:      pick(f.tx, defaultTxField),
		index:   pick(f.index, defaultIndexField),
		script:  pick(f.script, defaultScriptField),
		key:     pick(f.key, defaultKeyField),
		sighash: pick(f.sighash, defaultSighashField),
		nonce:   pick(f.nonce, defaultNonceField),
	}
}

// JSONParser parses jobs from JSON files.
type JSONParser struct {
	TxField      string // Field name for the transaction hex (default: "tx")
	IndexField   string // Field name for the input index (default: "index")
	ScriptField  string // Field name for the prevout script (default: "script")
	KeyField     string // Field name for the private key (default: "key")
	SighashField string // Field name for the sighash type (default: "sighash")
	NonceField   string // Field name for the nonce seed (default: "nonce")
}

// ParseJobs parses jobs from a JSON file.
//
// Expected format:
//
//	[
//	  {"tx": "0100...", "index": 0, "script": "dup hash160 [...] equalverify checksig",
//	   "key": "e8f3...", "sighash": "all", "nonce": ""}
//	]
//
// The sighash and nonce fields are optional.
func (p *JSONParser) ParseJobs(jsonFile string) ([]*Request, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber()

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	fields := jobFields{
		tx:      p.TxField,
		index:   p.IndexField,
		script:  p.ScriptField,
		key:     p.KeyField,
		sighash: p.SighashField,
		nonce:   p.NonceField,
	}.withDefaults()

	jobs := make([]*Request, 0, len(items))
	for i, item := range items {
		lookup := func(name string) (string, bool, error) {
			val, ok := item[name]
			if !ok || val == nil {
				return "", false, nil
			}
			s, err := fieldString(val)
			return s, true, err
		}
		job, err := parseJob(fields, lookup)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// CSVParser parses jobs from CSV files with a header row.
type CSVParser struct {
	TxCol      string // Column name for the transaction hex (default: "tx")
	IndexCol   string // Column name for the input index (default: "index")
	ScriptCol  string // Column name for the prevout script (default: "script")
	KeyCol     string // Column name for the private key (default: "key")
	SighashCol string // Column name for the sighash type (default: "sighash")
	NonceCol   string // Column name for the nonce seed (default: "nonce")
}

// ParseJobs parses jobs from a CSV file.
func (p *CSVParser) ParseJobs(csvFile string) ([]*Request, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	fields := jobFields{
		tx:      p.TxCol,
		index:   p.IndexCol,
		script:  p.ScriptCol,
		key:     p.KeyCol,
		sighash: p.SighashCol,
		nonce:   p.NonceCol,
	}.withDefaults()

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.TrimSpace(col)] = i
	}
	for _, required := range []string{fields.tx, fields.index,
		fields.script, fields.key} {

		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s",
				required)
		}
	}

	jobs := make([]*Request, 0)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		lookup := func(name string) (string, bool, error) {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return "", false, nil
			}
			return record[idx], true, nil
		}
		job, err := parseJob(fields, lookup)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// parseJob builds a request from the fields returned by lookup.
func parseJob(fields jobFields,
	lookup func(name string) (string, bool, error)) (*Request, error) {

	get := func(name string, required bool) (string, error) {
		val, ok, err := lookup(name)
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if !ok && required {
			return "", fmt.Errorf("missing %s field", name)
		}
		return strings.TrimSpace(val), nil
	}

	txText, err := get(fields.tx, true)
	if err != nil {
		return nil, err
	}
	tx, err := decode.Transaction(txText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fields.tx, err)
	}

	indexText, err := get(fields.index, true)
	if err != nil {
		return nil, err
	}
	index, err := strconv.Atoi(indexText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fields.index, err)
	}

	scriptText, err := get(fields.script, true)
	if err != nil {
		return nil, err
	}
	script, err := decode.Script(scriptText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fields.script, err)
	}

	keyText, err := get(fields.key, true)
	if err != nil {
		return nil, err
	}
	key, err := decode.PrivateKey(keyText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fields.key, err)
	}

	sighashText, err := get(fields.sighash, false)
	if err != nil {
		return nil, err
	}
	hashType, err := ParseSighashType(sighashText)
	if err != nil {
		return nil, err
	}

	nonceText, err := get(fields.nonce, false)
	if err != nil {
		return nil, err
	}
	var nonce NonceSource
	if nonceText != "" {
		seed, err := decode.Base16(nonceText)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w",
				fields.nonce, err)
		}
		nonce = Seeded{Seed: seed}
	}

	return &Request{
		Tx:            tx,
		Index:         index,
		PrevoutScript: script,
		HashType:      hashType,
		PrivateKey:    key,
		Nonce:         nonce,
	}, nil
}

// fieldString converts a decoded JSON value to its textual form.
func fieldString(val interface{}) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported type: %T", val)
	}
}
