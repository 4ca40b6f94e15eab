package services

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/flatorders/src/logger"
	"github.com/username/flatorders/src/parsers"
	"github.com/username/flatorders/src/processors"
)

const (
	DefaultResultTTL     = 15 * time.Minute
	CacheCleanupInterval = 30 * time.Minute
)

type convertServiceImpl struct {
	resultCache *cache.Cache
}

// NewConvertService builds the service with its own result cache. A zero
// ttl falls back to DefaultResultTTL.
func NewConvertService(ttl time.Duration) ConvertService {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &convertServiceImpl{
		resultCache: cache.New(ttl, CacheCleanupInterval),
	}
}

func (s *convertServiceImpl) ProcessUpload(fileReader io.Reader, filename string, opts parsers.Options) (*ConvertResult, error) {
	start := time.Now()
	logger.L.Info("ProcessUpload START", "filename", filename)

	res, err := parsers.ParseReader(fileReader, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	if opts.GroupSort {
		res.Records = processors.GroupAndSort(res.Records)
	}

	result := &ConvertResult{
		ID:               uuid.NewString(),
		SourceFile:       filename,
		TotalRecords:     len(res.Records),
		RowsScanned:      res.RowsScanned,
		SkippedSections:  res.SkippedSections,
		Sections:         summarizeSections(res),
		ValidationIssues: processors.Validate(res.Records),
		Records:          res.Records,
	}

	s.resultCache.Set(result.ID, result, cache.DefaultExpiration)

	logger.L.Info("ProcessUpload END",
		"filename", filename,
		"resultID", result.ID,
		"records", result.TotalRecords,
		"duration", time.Since(start))
	return result, nil
}

func (s *convertServiceImpl) GetResult(id string) (*ConvertResult, error) {
	if v, ok := s.resultCache.Get(id); ok {
		if result, ok := v.(*ConvertResult); ok {
			return result, nil
		}
	}
	return nil, ErrResultNotFound
}

// summarizeSections counts non-marker records per section, in first-seen
// section order.
func summarizeSections(res *parsers.Result) []SectionSummary {
	counts := map[string]int{}
	var order []string
	for _, rec := range res.Records {
		if _, ok := counts[rec.Section]; !ok {
			order = append(order, rec.Section)
		}
		if !rec.IsMarker() {
			counts[rec.Section]++
		}
	}
	summaries := make([]SectionSummary, 0, len(order))
	for _, name := range order {
		summaries = append(summaries, SectionSummary{Section: name, Records: counts[name]})
	}
	return summaries
}
