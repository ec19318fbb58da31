package gallery

import (
	"errors"
	"image"
	"testing"

	"fygallery/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []catalog.PhotoRecord {
	return []catalog.PhotoRecord{
		{Src: "0.jpg", Alt: "zero", Categories: []string{"nature"}},
		{Src: "1.jpg", Alt: "one", Categories: []string{"city"}},
		{Src: "2.jpg", Alt: "two", Categories: []string{"nature", "city"}},
	}
}

func indexes(items []*Item) []int {
	out := []int{}
	for _, it := range items {
		out = append(out, it.Index)
	}
	return out
}

func TestNewStateStartsUnfiltered(t *testing.T) {
	s := NewState(sampleRecords(), nil)
	assert.Equal(t, CategoryAll, s.Filter())
	assert.Equal(t, []int{0, 1, 2}, indexes(s.Visible()))
	assert.Equal(t, []string{"city", "nature"}, s.Categories())
	for _, it := range s.Items() {
		assert.Equal(t, Placeholder, it.LoadState())
	}
}

func TestApplyFilterVisibilityRule(t *testing.T) {
	tests := []struct {
		category string
		want     []int
	}{
		{"all", []int{0, 1, 2}},
		{"nature", []int{0, 2}},
		{"city", []int{1, 2}},
		{"nonexistent-tag", []int{}},
	}
	s := NewState(sampleRecords(), func(string) {})
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			s.ApplyFilter(tt.category)
			assert.Equal(t, tt.want, indexes(s.Visible()))
			for _, it := range s.Items() {
				assert.Equal(t, Matches(tt.category, it.Record), it.Visible())
			}
		})
	}
}

func TestApplyFilterNotifiesOnlyOnChange(t *testing.T) {
	var logs []string
	s := NewState(sampleRecords(), func(msg string) { logs = append(logs, msg) })
	calls := 0
	s.OnFilterChange(func(string) { calls++ })

	s.ApplyFilter("nature")
	s.ApplyFilter("nature")
	assert.Equal(t, 1, calls, "repeating the same filter is idempotent")

	s.ApplyFilter("all")
	assert.Equal(t, 2, calls)
	assert.Equal(t, 3, s.VisibleCount())
}

func TestUnknownCategoryIsLogged(t *testing.T) {
	var logs []string
	s := NewState(sampleRecords(), func(msg string) { logs = append(logs, msg) })
	assert.False(t, s.IsKnownCategory("nonexistent-tag"))
	assert.True(t, s.IsKnownCategory(CategoryAll))

	s.ApplyFilter("nonexistent-tag")
	assert.Zero(t, s.VisibleCount())
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0], "matches no catalog category")
}

func TestUnknownCategoryGoesToWarnLogger(t *testing.T) {
	var infos, warns []string
	s := NewState(sampleRecords(), func(msg string) { infos = append(infos, msg) })
	s.SetWarnLogger(func(msg string) { warns = append(warns, msg) })

	s.ApplyFilter("nonexistent-tag")
	assert.Empty(t, infos)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "nonexistent-tag")
}

func TestItemLoadStateNeverRegresses(t *testing.T) {
	it := &Item{}
	assert.False(t, it.MarkLoaded(nil), "Placeholder cannot jump to Loaded")
	assert.False(t, it.MarkFailed(errors.New("x")))

	require.True(t, it.MarkLoading())
	assert.False(t, it.MarkLoading(), "already Loading")

	require.True(t, it.MarkFailed(errors.New("boom")))
	assert.Equal(t, Failed, it.LoadState())
	assert.EqualError(t, it.Err(), "boom")

	require.True(t, it.MarkLoading(), "retry re-enters Loading")
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	require.True(t, it.MarkLoaded(img))
	assert.Nil(t, it.Err())

	assert.False(t, it.MarkLoading())
	assert.False(t, it.MarkFailed(errors.New("late")))
	assert.False(t, it.MarkLoaded(nil))
	assert.Equal(t, Loaded, it.LoadState())
	assert.Equal(t, img, it.Image())
}

func TestItemLookup(t *testing.T) {
	s := NewState(sampleRecords(), nil)
	it, ok := s.Item(2)
	require.True(t, ok)
	assert.Equal(t, "2.jpg", it.Record.Src)

	_, ok = s.Item(3)
	assert.False(t, ok)
	_, ok = s.Item(-1)
	assert.False(t, ok)
}
