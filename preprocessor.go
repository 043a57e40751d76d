package dataprep

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ai8future/dataprep/table"
)

// Preprocessor is one data-preparation session: a loaded table plus the
// registry of keys protecting its anonymized columns.
//
// A Preprocessor is not safe for concurrent use. Independent sessions share
// nothing and may run side by side.
type Preprocessor struct {
	cfg        *config
	data       *table.Table
	registry   *Registry
	cipher     *Cipher
	anonymizer *Anonymizer
	decryptor  *Decryptor
	keys       *FileKeyStore
	log        *log.Entry
}

// New creates a Preprocessor with no data imported.
func New(opts ...Option) (*Preprocessor, error) {
	cfg := newConfig(opts)
	if cfg.compressionThreshold <= 0 {
		return nil, fmt.Errorf("compression threshold must be positive, got %d", cfg.compressionThreshold)
	}
	logger := cfg.logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	registry := NewRegistry()
	cipher := NewCipher(opts...)
	return &Preprocessor{
		cfg:        cfg,
		registry:   registry,
		cipher:     cipher,
		anonymizer: NewAnonymizer(registry, cipher),
		decryptor:  NewDecryptor(registry, cipher),
		keys:       NewFileKeyStore(cfg.keyDir),
		log:        logger.WithField("session", uuid.NewString()),
	}, nil
}

// Import loads a dataset, replacing the current one. Keys of the previous
// dataset's anonymized columns are discarded; save them first with
// EncryptionKeys or ExportKeys if they are still needed.
func (p *Preprocessor) Import(ctx context.Context, src table.Source) error {
	var opts []table.LoadOption
	if p.cfg.httpClient != nil {
		opts = append(opts, table.WithHTTPClient(p.cfg.httpClient))
	}
	t, err := table.Load(ctx, src, opts...)
	if err != nil {
		return err
	}
	if dropped := p.registry.Columns(); len(dropped) > 0 {
		p.log.Warnf("discarding keys of anonymized columns %v from the previous dataset", dropped)
		p.registry.Close()
	}
	p.data = t
	p.log.WithField("source", src.String()).Infof("imported %d rows, %d columns", t.NumRows(), len(t.Columns()))
	return nil
}

func (p *Preprocessor) requireData() error {
	if p.data == nil {
		return ErrNoData
	}
	return nil
}

// Columns returns the current column names.
func (p *Preprocessor) Columns() ([]string, error) {
	if err := p.requireData(); err != nil {
		return nil, err
	}
	return p.data.Columns(), nil
}

// CountDuplicates returns how many rows repeat an earlier row's value in column.
func (p *Preprocessor) CountDuplicates(column string) (int, error) {
	if err := p.requireData(); err != nil {
		return 0, err
	}
	return p.data.CountDuplicates(column)
}

// RemoveDuplicates keeps the first row for each distinct value in column and
// returns the number of rows dropped.
func (p *Preprocessor) RemoveDuplicates(column string) (int, error) {
	if err := p.requireData(); err != nil {
		return 0, err
	}
	dropped, err := p.data.RemoveDuplicates(column)
	if err != nil {
		return 0, err
	}
	p.log.WithField("column", column).Infof("removed %d duplicate rows", dropped)
	return dropped, nil
}

// AddRank stores the descending rank of column in newColumn, dense within
// groups of groupBy when groupBy is set.
func (p *Preprocessor) AddRank(column, newColumn, groupBy string) error {
	if err := p.requireData(); err != nil {
		return err
	}
	if err := p.data.AddRank(column, newColumn, groupBy); err != nil {
		return err
	}
	p.log.WithField("column", column).Infof("ranked into %q (group by %q)", newColumn, groupBy)
	return nil
}

// AnonymizeColumn encrypts column under a fresh key and renames it to
// AnonymizedName(column). If keyName is set the raw key is saved to
// <key dir>/<keyName>.key once the column is encrypted; a failed call leaves
// any existing file of that name as it was.
func (p *Preprocessor) AnonymizeColumn(column, keyName string) error {
	if err := p.requireData(); err != nil {
		return err
	}
	// Checked here as well as in Anonymize so that no key file is created
	// for a call that cannot succeed.
	if p.registry.IsAnonymized(column) {
		return fmt.Errorf("%w: %q", ErrAlreadyAnonymized, column)
	}
	if !p.data.HasColumn(column) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	if keyName == "" {
		if err := p.anonymizer.Anonymize(p.data, column, nil); err != nil {
			return err
		}
		p.log.WithField("column", column).Info("anonymized column")
		return nil
	}

	dest, err := p.keys.Stage(keyName)
	if err != nil {
		return fmt.Errorf("persist key for %q: %w", column, err)
	}
	if err := p.anonymizer.Anonymize(p.data, column, dest); err != nil {
		dest.Discard()
		return err
	}
	if err := dest.Commit(); err != nil {
		return fmt.Errorf("column %q is anonymized but its key was not saved: %w", column, err)
	}
	p.log.WithField("column", column).Infof("anonymized column, key saved to %s", p.keys.Path(keyName))
	return nil
}

// DecryptColumn decrypts an anonymized column in place and releases its key.
func (p *Preprocessor) DecryptColumn(anonName string) error {
	if err := p.requireData(); err != nil {
		return err
	}
	if err := p.decryptor.DecryptColumn(p.data, anonName); err != nil {
		return err
	}
	p.log.WithField("column", anonName).Info("decrypted column")
	return nil
}

// DecryptEntry decrypts one token from column anonName. It changes nothing.
func (p *Preprocessor) DecryptEntry(entry, anonName string) (string, error) {
	return p.decryptor.DecryptEntry(entry, anonName)
}

// RekeyColumn re-encrypts an anonymized column under a fresh key. When keyName
// is set the new key replaces <key dir>/<keyName>.key only if re-encryption
// succeeds.
func (p *Preprocessor) RekeyColumn(anonName, keyName string) error {
	if err := p.requireData(); err != nil {
		return err
	}
	plain, err := PlainName(anonName)
	if err != nil {
		return err
	}
	if !p.registry.IsAnonymized(plain) || !p.data.HasColumn(anonName) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, anonName)
	}

	if keyName == "" {
		if err := p.anonymizer.Rekey(p.data, anonName, nil); err != nil {
			return err
		}
		p.log.WithField("column", anonName).Info("rekeyed column")
		return nil
	}

	dest, err := p.keys.Stage(keyName)
	if err != nil {
		return fmt.Errorf("persist key for %q: %w", anonName, err)
	}
	if err := p.anonymizer.Rekey(p.data, anonName, dest); err != nil {
		dest.Discard()
		return err
	}
	if err := dest.Commit(); err != nil {
		return fmt.Errorf("column %q is rekeyed but its new key was not saved: %w", anonName, err)
	}
	p.log.WithField("column", anonName).Infof("rekeyed column, key saved to %s", p.keys.Path(keyName))
	return nil
}

// RestoreKey registers the key saved as keyName for an anonymized column of
// the current table, e.g. after re-importing an exported anonymized dataset.
func (p *Preprocessor) RestoreKey(anonName, keyName string) error {
	if err := p.requireData(); err != nil {
		return err
	}
	plain, err := PlainName(anonName)
	if err != nil {
		return err
	}
	if !p.data.HasColumn(anonName) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, anonName)
	}
	if p.data.HasColumn(plain) {
		return fmt.Errorf("%w: %q", ErrColumnExists, plain)
	}
	key, err := p.keys.Load(keyName)
	if err != nil {
		return err
	}
	defer zero(key)
	if err := p.registry.Register(plain, key); err != nil {
		return err
	}
	p.log.WithField("column", anonName).Infof("restored key from %s", p.keys.Path(keyName))
	return nil
}

// InvertedIndex builds an index of valueColumn by keyColumn from the current
// table. When fileName is set it is written to <fileName>.json and, if parquet
// is set, <fileName>.parquet.
func (p *Preprocessor) InvertedIndex(keyColumn, valueColumn, fileName string, parquet bool, opts ...IndexOption) (*InvertedIndex, error) {
	if err := p.requireData(); err != nil {
		return nil, err
	}
	ix, err := BuildInvertedIndex(p.data, keyColumn, valueColumn, opts...)
	if err != nil {
		return nil, err
	}
	if fileName == "" {
		return ix, nil
	}
	written, err := ix.Save(fileName, parquet)
	if err != nil {
		return nil, err
	}
	p.log.WithField("column", keyColumn).Infof("wrote inverted index with %d keys to %v", ix.Len(), written)
	return ix, nil
}

// Save exports the current table in the requested formats.
func (p *Preprocessor) Save(fileName string, formats table.Format) ([]string, error) {
	if err := p.requireData(); err != nil {
		return nil, err
	}
	written, err := p.data.Save(fileName, formats)
	if err != nil {
		return written, err
	}
	p.log.Infof("saved %d rows as %s to %v", p.data.NumRows(), formats, written)
	return written, nil
}

// EncryptionKeys returns a copy of the keys of all anonymized columns, by
// plain column name.
func (p *Preprocessor) EncryptionKeys() map[string][]byte {
	return p.registry.AllKeys()
}

// ExportKeys writes EncryptionKeys to path as a JSON object of base64 keys.
func (p *Preprocessor) ExportKeys(path string) error {
	keys := p.registry.AllKeys()
	defer func() {
		for _, k := range keys {
			zero(k)
		}
	}()
	if err := writeKeysJSON(path, keys); err != nil {
		return err
	}
	p.log.Infof("exported %d keys to %s", len(keys), path)
	return nil
}

// Data returns the current table, or nil before Import.
func (p *Preprocessor) Data() *table.Table {
	return p.data
}

// Close zeroes all key material. The session can no longer decrypt.
func (p *Preprocessor) Close() {
	p.registry.Close()
}

// JSONToParquet converts a JSON file (one object per line, or a single
// object) to <fileName>.parquet and returns the path written.
func JSONToParquet(ctx context.Context, jsonFile, fileName string) (string, error) {
	t, err := table.Load(ctx, table.Source{Path: jsonFile})
	if err != nil {
		return "", err
	}
	written, err := t.Save(fileName, table.FormatParquet)
	if err != nil {
		return "", err
	}
	return written[0], nil
}
