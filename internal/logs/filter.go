package logs

import (
	"strconv"
	"strings"
)

// MatchVideo keeps lines written for one video. It understands both the
// console format ("[video=12 stage=...]") and JSON ("video_id":12).
func MatchVideo(videoID int64) func(string) bool {
	id := strconv.FormatInt(videoID, 10)
	console := "[video=" + id
	jsonKey := `"video_id":` + id
	return func(line string) bool {
		if idx := strings.Index(line, console); idx >= 0 {
			return boundary(line, idx+len(console), " ]")
		}
		if idx := strings.Index(line, jsonKey); idx >= 0 {
			return boundary(line, idx+len(jsonKey), ",}")
		}
		return false
	}
}

// MatchAny keeps lines containing any of the given substrings, compared
// case-insensitively. An empty list keeps everything.
func MatchAny(terms ...string) func(string) bool {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	if len(lowered) == 0 {
		return nil
	}
	return func(line string) bool {
		l := strings.ToLower(line)
		for _, t := range lowered {
			if strings.Contains(l, t) {
				return true
			}
		}
		return false
	}
}

// All combines predicates; nil predicates are skipped.
func All(preds ...func(string) bool) func(string) bool {
	active := make([]func(string) bool, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(line string) bool {
		for _, p := range active {
			if !p(line) {
				return false
			}
		}
		return true
	}
}

func boundary(line string, pos int, terminators string) bool {
	return pos < len(line) && strings.IndexByte(terminators, line[pos]) >= 0
}
