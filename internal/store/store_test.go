package store

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/ChartDash/internal/config"
	"github.com/JonMunkholm/ChartDash/internal/core"
)

type failingKV struct {
	mu    sync.Mutex
	saves int
}

func (f *failingKV) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend unavailable")
}

func (f *failingKV) Save(context.Context, string, []byte) error {
	f.mu.Lock()
	f.saves++
	f.mu.Unlock()
	return errors.New("backend unavailable")
}

func (f *failingKV) Close() error { return nil }

func sampleRecords() []core.DataRecord {
	return []core.DataRecord{
		{Category: "A", Value: 16},
		{Category: "B", Value: 64},
		{Category: "C", Value: 48},
	}
}

func TestStore_MutationsPersist(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := New(ctx, kv)

	s.Replace(ctx, sampleRecords())
	if err := s.Append(ctx, core.DataRecord{Category: "D", Value: 2}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	name := "Bee"
	if err := s.Update(ctx, 1, core.RecordPatch{Category: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Remove(ctx, 0); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	want := []core.DataRecord{
		{Category: "Bee", Value: 64},
		{Category: "C", Value: 48},
		{Category: "D", Value: 2},
	}
	if got := s.Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("Records() = %v, want %v", got, want)
	}

	data, ok, err := kv.Load(ctx, KeyChartData)
	if err != nil || !ok {
		t.Fatalf("Load(chartData) ok=%v err=%v", ok, err)
	}
	var persisted []core.DataRecord
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(persisted, want) {
		t.Errorf("persisted = %v, want %v", persisted, want)
	}
}

func TestStore_IndexOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil)
	s.Replace(ctx, sampleRecords())

	v := 1.0
	tests := []struct {
		name string
		fn   func() error
	}{
		{"update negative", func() error { return s.Update(ctx, -1, core.RecordPatch{Value: &v}) }},
		{"update past end", func() error { return s.Update(ctx, 3, core.RecordPatch{Value: &v}) }},
		{"remove past end", func() error { return s.Remove(ctx, 3) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, core.ErrIndexOutOfRange) {
				t.Errorf("err = %v, want ErrIndexOutOfRange", err)
			}
		})
	}

	if got := s.Records(); !reflect.DeepEqual(got, sampleRecords()) {
		t.Errorf("failed edits changed records: %v", got)
	}
}

func TestStore_RecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil)
	in := sampleRecords()
	s.Replace(ctx, in)

	in[0].Value = 999
	out := s.Records()
	out[1].Category = "changed"

	if got := s.Records(); !reflect.DeepEqual(got, sampleRecords()) {
		t.Errorf("store aliased caller slices: %v", got)
	}
}

func TestStore_Derived(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil)
	s.Replace(ctx, sampleRecords())

	s.SetOptions(ctx, core.TransformOptions{Sort: core.SortDesc, Normalize: true})

	want := []core.DataRecord{
		{Category: "B", Value: 50},
		{Category: "C", Value: 37.5},
		{Category: "A", Value: 12.5},
	}
	if got := s.Derived(); !reflect.DeepEqual(got, want) {
		t.Errorf("Derived() = %v, want %v", got, want)
	}

	// The working sequence itself is untouched.
	if got := s.Records(); !reflect.DeepEqual(got, sampleRecords()) {
		t.Errorf("Records() = %v, want original order", got)
	}

	// Derived follows later edits.
	s.Clear(ctx)
	if got := s.Derived(); len(got) != 0 {
		t.Errorf("Derived() after Clear = %v, want empty", got)
	}
}

func TestStore_SetOption(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil)

	tests := []struct {
		name, value string
		wantErr     bool
	}{
		{"sort", "asc", false},
		{"normalize", "true", false},
		{"aggregate", "avg", false},
		{"sort", "sideways", true},
		{"aggregate", "median", true},
		{"color", "red", true},
	}
	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			err := s.SetOption(ctx, tt.name, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetOption(%q, %q) err = %v, wantErr %v", tt.name, tt.value, err, tt.wantErr)
			}
		})
	}

	want := core.TransformOptions{Sort: core.SortAsc, Normalize: true, Aggregate: core.AggregateAvg}
	if got := s.Options(); got != want {
		t.Errorf("Options() = %+v, want %+v", got, want)
	}
}

func TestStore_Aggregate(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil)
	s.Replace(ctx, []core.DataRecord{
		{Category: "A", Value: 1},
		{Category: "B", Value: 5},
		{Category: "A", Value: 3},
	})

	preview := s.Aggregate(ctx, core.AggregateSum, false)
	want := []core.DataRecord{{Category: "A", Value: 4}, {Category: "B", Value: 5}}
	if !reflect.DeepEqual(preview, want) {
		t.Errorf("Aggregate preview = %v, want %v", preview, want)
	}
	if s.Len() != 3 {
		t.Errorf("preview changed the store: Len() = %d", s.Len())
	}

	s.Aggregate(ctx, core.AggregateSum, true)
	if got := s.Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("Records() after apply = %v, want %v", got, want)
	}
}

func TestStore_ChartConfig(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := New(ctx, kv)

	if got := s.ChartConfig(); got != core.DefaultChartConfig() {
		t.Errorf("initial ChartConfig() = %+v, want defaults", got)
	}

	bad := core.DefaultChartConfig()
	bad.AspectRatio = 10
	if err := s.SetChartConfig(ctx, bad); !errors.Is(err, core.ErrInvalidChartConfig) {
		t.Errorf("SetChartConfig(bad) err = %v, want ErrInvalidChartConfig", err)
	}

	cfg := core.DefaultChartConfig()
	cfg.Type = core.ChartPie
	cfg.Title = "Share"
	if err := s.SetChartConfig(ctx, cfg); err != nil {
		t.Fatalf("SetChartConfig: %v", err)
	}

	reopened := New(ctx, kv)
	if got := reopened.ChartConfig(); got != cfg {
		t.Errorf("reloaded ChartConfig() = %+v, want %+v", got, cfg)
	}
}

func TestStore_Chart(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil)

	if _, err := s.Chart(); !errors.Is(err, core.ErrEmptyDataset) {
		t.Errorf("Chart() on empty store err = %v, want ErrEmptyDataset", err)
	}

	s.Replace(ctx, sampleRecords())
	s.SetOptions(ctx, core.TransformOptions{Sort: core.SortAsc})

	chart, err := s.Chart()
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if want := []string{"A", "C", "B"}; !reflect.DeepEqual(chart.Labels, want) {
		t.Errorf("Labels = %v, want %v", chart.Labels, want)
	}
}

func TestStore_ExportCSV(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, nil)

	if got := s.ExportCSV(); got != "" {
		t.Errorf("ExportCSV() on empty store = %q, want empty", got)
	}

	s.Replace(ctx, []core.DataRecord{{Category: `Say "hi", all`, Value: 2.5}})
	want := "category,value\n\"Say \"\"hi\"\", all\",2.5"
	if got := s.ExportCSV(); got != want {
		t.Errorf("ExportCSV() = %q, want %q", got, want)
	}
}

func TestStore_PersistenceFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{}
	s := New(ctx, kv)

	if s.Len() != 0 {
		t.Fatalf("Len() = %d after failed load, want 0", s.Len())
	}

	s.Replace(ctx, sampleRecords())
	if got := s.Records(); !reflect.DeepEqual(got, sampleRecords()) {
		t.Errorf("Records() = %v, want in-memory state despite save failure", got)
	}
	if kv.saves == 0 {
		t.Error("expected a save attempt")
	}
}

func TestStore_AppendRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		records []core.DataRecord
	}{
		{"empty category", []core.DataRecord{{Category: "", Value: -7}}},
		{"blank category", []core.DataRecord{{Category: "  ", Value: 1}}},
		{"nan value", []core.DataRecord{{Category: "A", Value: math.NaN()}}},
		{"infinite value", []core.DataRecord{{Category: "A", Value: math.Inf(1)}}},
		{"one bad record in a batch", []core.DataRecord{{Category: "A", Value: 1}, {Category: "", Value: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := NewMemoryKV()
			s := New(ctx, kv)
			s.Replace(ctx, sampleRecords())

			err := s.Append(ctx, tt.records...)
			if !errors.Is(err, core.ErrInvalidRecord) {
				t.Fatalf("Append() error = %v, want ErrInvalidRecord", err)
			}
			if got := s.Records(); !reflect.DeepEqual(got, sampleRecords()) {
				t.Errorf("Records() = %v, want unchanged", got)
			}
		})
	}
}

func TestStore_LoadIgnoresInvalidData(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []core.DataRecord
	}{
		{"missing fields", `[{"category":"a"},{"value":3}]`, []core.DataRecord{}},
		{"text value", `[{"category":"a","value":"3"}]`, []core.DataRecord{}},
		{"null entry", `[{"category":"a","value":1},null]`, []core.DataRecord{}},
		{"not an array", `{"category":"a","value":1}`, []core.DataRecord{}},
		{"empty array", `[]`, []core.DataRecord{}},
		{"valid", `[{"category":"a","value":1},{"category":2024,"value":2}]`, []core.DataRecord{{Category: "a", Value: 1}, {Category: "2024", Value: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := NewMemoryKV()
			if err := kv.Save(ctx, KeyChartData, []byte(tt.payload)); err != nil {
				t.Fatal(err)
			}

			s := New(ctx, kv)
			if got := s.Records(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Records() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStore_Sync(t *testing.T) {
	ctx := context.Background()

	failing := New(ctx, &failingKV{})
	failing.Replace(ctx, sampleRecords())
	if err := failing.Sync(ctx); err == nil {
		t.Error("Sync() = nil with a failing backend, want error")
	}

	kv := NewMemoryKV()
	s := New(ctx, kv)
	if err := s.Sync(ctx); err != nil {
		t.Fatalf("Sync() on unchanged store: %v", err)
	}
	if _, ok, _ := kv.Load(ctx, KeyChartData); ok {
		t.Error("Sync() wrote state that never changed")
	}

	s.Replace(ctx, sampleRecords())
	if err := s.Sync(ctx); err != nil {
		t.Fatalf("Sync(): %v", err)
	}
	if got := New(ctx, kv).Records(); !reflect.DeepEqual(got, sampleRecords()) {
		t.Errorf("reloaded Records() = %v, want %v", got, sampleRecords())
	}
}

func TestStore_SQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "chart.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	s := New(ctx, kv)
	s.Replace(ctx, sampleRecords())
	if err := s.Append(ctx, core.DataRecord{Category: "D", Value: 0}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	kv2, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv2.Close()

	want := append(sampleRecords(), core.DataRecord{Category: "D", Value: 0})
	if got := New(ctx, kv2).Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded Records() = %v, want %v", got, want)
	}
}

func TestStore_ConcurrentEdits(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, NewMemoryKV())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(ctx, core.DataRecord{Category: "x", Value: float64(i)})
			_ = s.Derived()
		}(i)
	}
	wg.Wait()

	if s.Len() != 20 {
		t.Errorf("Len() = %d, want 20", s.Len())
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := testStoreConfig(t)

	for _, driver := range []string{"", "memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg.Driver = driver
			p, err := Open(ctx, cfg)
			if err != nil {
				t.Fatalf("Open(%q): %v", driver, err)
			}
			defer p.Close()

			if err := p.Save(ctx, KeyChartData, []byte(`[]`)); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, ok, err := p.Load(ctx, KeyChartData)
			if err != nil || !ok || string(got) != "[]" {
				t.Errorf("Load = %q, %v, %v", got, ok, err)
			}
		})
	}

	cfg.Driver = "mongo"
	if _, err := Open(ctx, cfg); err == nil {
		t.Error("Open(mongo) should fail")
	}
}

func testStoreConfig(t *testing.T) config.StoreConfig {
	t.Helper()
	return config.StoreConfig{
		Path:     filepath.Join(t.TempDir(), "open.db"),
		MaxConns: 2,
		MinConns: 1,
		Timeout:  time.Second,
	}
}

func TestPostgresKV(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := testStoreConfig(t)
	cfg.Driver = config.DriverPostgres
	cfg.URL = url

	kv, err := OpenPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer kv.Close()

	s := New(ctx, kv)
	s.Replace(ctx, sampleRecords())

	if got := New(ctx, kv).Records(); !reflect.DeepEqual(got, sampleRecords()) {
		t.Errorf("reloaded Records() = %v, want %v", got, sampleRecords())
	}
}
