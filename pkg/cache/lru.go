// Package cache keeps recently assembled revision details in memory. A
// revision is immutable once its hash is known, so entries never go stale
// and are only evicted for space.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/Sumatoshi-tech/gitattr/pkg/revision"
)

// DefaultDetailCacheSize is the default memory budget of a DetailCache (32 MB).
const DefaultDetailCacheSize = 32 * 1024 * 1024

const (
	// bytesPerKB normalizes entry sizes in the eviction cost.
	bytesPerKB = 1024.0

	// evictionSampleSize is the number of LRU tail entries compared on eviction.
	evictionSampleSize = 5

	// fileOverhead approximates the fixed cost of one ChangedFile.
	fileOverhead = 64
	// detailOverhead approximates the fixed cost of one Detail.
	detailOverhead = 512
)

// Key identifies one assembled detail. Details fetched with different patch
// options are cached separately.
type Key struct {
	Root             string
	Hash             string
	IncludeDiff      bool
	IncludeFileDiffs bool
}

// DetailCache is a size-bounded LRU of revision details. It is safe for
// concurrent use. A nil *DetailCache is a valid cache that stores nothing.
type DetailCache struct {
	mu          sync.Mutex
	entries     map[Key]*lruEntry
	head        *lruEntry // Most recently used.
	tail        *lruEntry // Least recently used.
	maxSize     int64
	currentSize int64

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key         Key
	detail      *revision.Detail
	size        int64
	accessCount int64
	prev        *lruEntry
	next        *lruEntry
}

// evictionCost is low for large, rarely read entries.
func (e *lruEntry) evictionCost() float64 {
	sizeKB := max(float64(e.size)/bytesPerKB, 1)

	return float64(e.accessCount) / sizeKB
}

// NewDetailCache creates a cache holding at most maxSize estimated bytes.
func NewDetailCache(maxSize int64) *DetailCache {
	if maxSize <= 0 {
		maxSize = DefaultDetailCacheSize
	}

	return &DetailCache{
		entries: make(map[Key]*lruEntry),
		maxSize: maxSize,
	}
}

// Get returns a copy of the cached detail for key.
func (c *DetailCache) Get(key Key) (*revision.Detail, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)

	entry.accessCount++
	c.moveToFront(entry)

	return clone(entry.detail), true
}

// Put stores a copy of detail under key. Details larger than the whole
// budget are not stored.
func (c *DetailCache) Put(key Key, detail *revision.Detail) {
	if c == nil || detail == nil {
		return
	}

	size := EstimateSize(detail)
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.accessCount++
		c.moveToFront(entry)

		return
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictLowestCost()
	}

	entry := &lruEntry{
		key:         key,
		detail:      clone(detail),
		size:        size,
		accessCount: 1,
	}

	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
}

// Stats returns cache statistics.
func (c *DetailCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// EstimateSize approximates the memory held by detail, dominated by its
// diff text and patches.
func EstimateSize(detail *revision.Detail) int64 {
	size := detailOverhead + len(detail.Message) + len(detail.Author) + len(detail.Committer)

	if detail.Diff != nil {
		size += len(*detail.Diff)
	}

	for _, file := range detail.Files {
		size += fileOverhead + len(file.Path) + len(file.OldPath)
		if file.Patch != nil {
			size += len(*file.Patch)
		}
	}

	return int64(size)
}

// clone copies the slices of detail so that callers cannot mutate a cached
// entry. String pointers are shared; their targets are immutable.
func clone(detail *revision.Detail) *revision.Detail {
	out := *detail
	out.Parents = append([]string(nil), detail.Parents...)
	out.Files = append([]revision.ChangedFile(nil), detail.Files...)

	if detail.Parents != nil && out.Parents == nil {
		out.Parents = []string{}
	}

	if detail.Files != nil && out.Files == nil {
		out.Files = []revision.ChangedFile{}
	}

	return &out
}

func (c *DetailCache) moveToFront(entry *lruEntry) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

func (c *DetailCache) addToFront(entry *lruEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *DetailCache) removeFromList(entry *lruEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

// evictLowestCost removes the cheapest of the last evictionSampleSize
// entries.
func (c *DetailCache) evictLowestCost() {
	victim := c.tail
	if victim == nil {
		return
	}

	lowestCost := victim.evictionCost()

	entry := victim.prev
	for range evictionSampleSize - 1 {
		if entry == nil {
			break
		}

		cost := entry.evictionCost()
		if cost < lowestCost {
			lowestCost = cost
			victim = entry
		}

		entry = entry.prev
	}

	c.removeFromList(victim)
	delete(c.entries, victim.key)
	c.currentSize -= victim.size
}
