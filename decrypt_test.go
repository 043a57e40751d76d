package dataprep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecryptColumn_RoundTrip(t *testing.T) {
	a, d, r := newTestAnonymizer()
	tbl := sampleData(t)
	original, err := tbl.Column("email")
	require.NoError(t, err)

	require.NoError(t, a.Anonymize(tbl, "email", nil))
	require.NoError(t, d.DecryptColumn(tbl, "email_anon"))

	require.Equal(t, []string{"email", "age", "team"}, tbl.Columns())
	got, err := tbl.Column("email")
	require.NoError(t, err)
	require.Equal(t, original, got)
	require.False(t, r.IsAnonymized("email"))
	require.Empty(t, r.AllKeys())
}

func TestDecryptColumn_ThenAnonymizeAgain(t *testing.T) {
	a, d, _ := newTestAnonymizer()
	tbl := sampleData(t)

	require.NoError(t, a.Anonymize(tbl, "email", nil))
	require.NoError(t, d.DecryptColumn(tbl, "email_anon"))
	require.NoError(t, a.Anonymize(tbl, "email", nil))
	require.True(t, tbl.HasColumn("email_anon"))
}

func TestDecryptColumn_NotAnonymizedName(t *testing.T) {
	_, d, _ := newTestAnonymizer()
	tbl := sampleData(t)

	err := d.DecryptColumn(tbl, "email")
	require.ErrorIs(t, err, ErrNotAnonymizedName)
}

func TestDecryptColumn_Unknown(t *testing.T) {
	_, d, _ := newTestAnonymizer()
	tbl := sampleData(t)

	err := d.DecryptColumn(tbl, "missing_anon")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestDecryptColumn_MalformedTokenIsAtomic(t *testing.T) {
	a, d, r := newTestAnonymizer()
	tbl := sampleData(t)
	require.NoError(t, a.Anonymize(tbl, "email", nil))

	tokens, err := tbl.Column("email_anon")
	require.NoError(t, err)
	corrupted := append([]any{}, tokens...)
	corrupted[1] = "not-a-token"
	require.NoError(t, tbl.SetColumn("email_anon", corrupted))

	err = d.DecryptColumn(tbl, "email_anon")
	require.ErrorIs(t, err, ErrDecryptionFailed)
	require.ErrorContains(t, err, "row 1")

	got, err := tbl.Column("email_anon")
	require.NoError(t, err)
	require.Equal(t, corrupted, got)
	require.True(t, r.IsAnonymized("email"))
}

func TestDecryptColumn_NonStringCell(t *testing.T) {
	a, d, _ := newTestAnonymizer()
	tbl := sampleData(t)
	require.NoError(t, a.Anonymize(tbl, "email", nil))

	tokens, err := tbl.Column("email_anon")
	require.NoError(t, err)
	tokens[0] = int64(5)
	require.NoError(t, tbl.SetColumn("email_anon", tokens))

	require.ErrorIs(t, d.DecryptColumn(tbl, "email_anon"), ErrDecryptionFailed)
}

func TestDecryptEntry(t *testing.T) {
	a, d, r := newTestAnonymizer()
	tbl := sampleData(t)
	require.NoError(t, a.Anonymize(tbl, "email", nil))

	tokens, err := tbl.Column("email_anon")
	require.NoError(t, err)

	plain, err := d.DecryptEntry(tokens[1].(string), "email_anon")
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", plain)

	// Nothing changes.
	require.True(t, r.IsAnonymized("email"))
	after, err := tbl.Column("email_anon")
	require.NoError(t, err)
	require.Equal(t, tokens, after)
}

func TestDecryptEntry_Errors(t *testing.T) {
	a, d, _ := newTestAnonymizer()
	tbl := sampleData(t)
	require.NoError(t, a.Anonymize(tbl, "email", nil))
	tokens, err := tbl.Column("email_anon")
	require.NoError(t, err)

	_, err = d.DecryptEntry("garbage", "email_anon")
	require.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = d.DecryptEntry(tokens[0].(string), "team_anon")
	require.ErrorIs(t, err, ErrUnknownColumn)

	_, err = d.DecryptEntry(tokens[0].(string), "email")
	require.ErrorIs(t, err, ErrNotAnonymizedName)
}

func TestDecryptEntry_OtherColumnKey(t *testing.T) {
	a, d, _ := newTestAnonymizer()
	tbl := sampleData(t)
	require.NoError(t, a.Anonymize(tbl, "email", nil))
	require.NoError(t, a.Anonymize(tbl, "team", nil))

	tokens, err := tbl.Column("email_anon")
	require.NoError(t, err)

	_, err = d.DecryptEntry(tokens[0].(string), "team_anon")
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptEntry_AfterDecryptColumn(t *testing.T) {
	a, d, _ := newTestAnonymizer()
	tbl := sampleData(t)
	require.NoError(t, a.Anonymize(tbl, "email", nil))
	tokens, err := tbl.Column("email_anon")
	require.NoError(t, err)

	require.NoError(t, d.DecryptColumn(tbl, "email_anon"))

	_, err = d.DecryptEntry(tokens[0].(string), "email_anon")
	require.ErrorIs(t, err, ErrUnknownColumn)
}
