package dataprep

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ai8future/dataprep/table"
)

var benchCipher = NewCipher()

func BenchmarkSealString_100B(b *testing.B) {
	key := testKey("bench")
	s := strings.Repeat("x", 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchCipher.SealString(key, s)
	}
}

func BenchmarkSealString_10KB(b *testing.B) {
	key := testKey("bench")
	s := strings.Repeat("x", 10*1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchCipher.SealString(key, s)
	}
}

func BenchmarkOpenString_100B(b *testing.B) {
	key := testKey("bench")
	token, _ := benchCipher.SealString(key, strings.Repeat("x", 100))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchCipher.OpenString(key, token)
	}
}

func benchTable(b *testing.B, rows int) *table.Table {
	b.Helper()
	emails := make([]any, rows)
	teams := make([]any, rows)
	for i := range emails {
		emails[i] = fmt.Sprintf("user%d@example.com", i)
		teams[i] = fmt.Sprintf("team%d", i%10)
	}
	tbl, err := table.FromColumns([]string{"email", "team"}, emails, teams)
	if err != nil {
		b.Fatal(err)
	}
	return tbl
}

func BenchmarkAnonymizeDecrypt_10kRows(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		tbl := benchTable(b, 10000)
		registry := NewRegistry()
		anon := NewAnonymizer(registry, benchCipher)
		dec := NewDecryptor(registry, benchCipher)
		b.StartTimer()

		if err := anon.Anonymize(tbl, "email", nil); err != nil {
			b.Fatal(err)
		}
		if err := dec.DecryptColumn(tbl, "email_anon"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildInvertedIndex_10kRows(b *testing.B) {
	tbl := benchTable(b, 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildInvertedIndex(tbl, "team", "email"); err != nil {
			b.Fatal(err)
		}
	}
}
