// Package extract turns joined dataset rows into flat catalog records.
//
// Each field is parsed independently and falls back to a documented default
// when its source is missing or malformed: empty strings for text and lists,
// 0.0 for the rating, an unknown year. Only a row without any usable title is
// skipped. Fallbacks are tallied in Stats so the pipeline can report them.
package extract
