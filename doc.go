// Package dataprep prepares tabular datasets for sharing: it deduplicates and
// ranks records, encrypts sensitive columns with per-column keys and builds
// inverted indexes.
//
// # Anonymization
//
// Anonymizing a column encrypts every cell under a fresh 32-byte key and
// renames the column from "email" to "email_anon". Cells are rendered as text
// first (see table.Stringify), so decryption yields strings. Null cells stay
// null.
//
// Each cell is sealed with XSalsa20-Poly1305 (NaCl secretbox) under a key
// derived from the column key with HKDF-SHA256, using a random 24-byte nonce.
// The same value therefore encrypts to a different token in every row. Cells
// of 1KB or more are zstd-compressed before sealing when that saves at least
// 10%.
//
// Tokens are unpadded base64url text of:
//
//	[version:1][flag:1][nonce:24][secretbox(plaintext)]
//
// # Keys
//
// A Registry holds the key of every anonymized column, by plain column name.
// Decrypting a column releases and zeroes its key. Keys can be saved to a
// FileKeyStore when a column is anonymized, restored from it later, rotated
// with Anonymizer.Rekey, or exported with Preprocessor.ExportKeys.
//
// # Basic Usage
//
//	p, err := dataprep.New(dataprep.WithKeyDir("keys"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	if err := p.Import(ctx, table.Source{Path: "users.json"}); err != nil {
//	    log.Fatal(err)
//	}
//	p.RemoveDuplicates("id")
//	p.AnonymizeColumn("email", "email") // key saved to keys/email.key
//	p.Save("users_anon", table.FormatJSON|table.FormatParquet)
//
// # Inverted Indexes
//
// BuildInvertedIndex groups one column's values under the distinct values of
// another:
//
//	k  v
//	A  1
//	B  2      ->  {"A":[1,3],"B":[2]}
//	A  3
//
// Keys keep their order of first occurrence and values keep row order,
// duplicates included.
//
// # Thread Safety
//
// Cipher is safe for concurrent use. Registry, Anonymizer, Decryptor and
// Preprocessor are not; use one Preprocessor per goroutine.
package dataprep
