package archive

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	domarch "github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
)

// parseKNNHits parses a 2-stride FT.SEARCH reply:
// [total, key1, fields1, key2, fields2, ...]. The cosine distance in
// __vector_score converts to a similarity in [0,1].
func parseKNNHits(raw []rueidis.RedisMessage, prefix string) ([]result.Hit, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	hits := make([]result.Hit, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		score := 0.0
		if distStr, ok := fields["__vector_score"]; ok {
			if dist, err := strconv.ParseFloat(distStr, 64); err == nil {
				score = max(0, 1.0-dist) // cosine distance → similarity, clamped to [0,1]
			}
		}

		id := strings.TrimPrefix(key, prefix)
		hits = append(hits, result.New(documentFromFields(id, fields), score, len(hits)))
	}

	return hits, nil
}

// parseBM25Hits parses a 3-stride WITHSCORES reply:
// [total, key1, score1, fields1, ...]. BM25 scores are unbounded raw
// scores; hybrid merging normalizes them.
func parseBM25Hits(raw []rueidis.RedisMessage, prefix string) ([]result.Hit, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	hits := make([]result.Hit, 0, total)
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		id := strings.TrimPrefix(key, prefix)
		hits = append(hits, result.New(documentFromFields(id, fields), score, len(hits)))
	}

	return hits, nil
}

// parseListHits parses a 2-stride reply for unscored scans.
func parseListHits(raw []rueidis.RedisMessage, prefix string) ([]result.Hit, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	hits := make([]result.Hit, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		id := strings.TrimPrefix(key, prefix)
		hits = append(hits, result.New(documentFromFields(id, fields), 0, len(hits)))
	}

	return hits, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// documentFromFields maps archive hash fields onto the domain document.
// Missing or malformed fields stay at their zero (absent) values.
func documentFromFields(id string, fields map[string]string) domarch.Document {
	meta := domarch.Metadata{
		Author: fields["author"],
		Title:  fields["title"],
	}
	if y, err := strconv.Atoi(fields["year"]); err == nil {
		meta.Year = y
	}
	if m, err := strconv.Atoi(fields["month"]); err == nil {
		meta.Month = m
	}
	if d, err := strconv.Atoi(fields["day"]); err == nil {
		meta.Day = d
	}
	if kw := fields["keywords"]; kw != "" {
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				meta.Keywords = append(meta.Keywords, k)
			}
		}
	}
	if fields["has_url"] == "1" || fields["has_url"] == "true" {
		meta.HasURL = true
	}

	return domarch.New(id, fields["text_excerpt"], meta)
}

// vectorToBytes serializes a []float32 for the KNN BLOB parameter.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
