package logreader

import "strings"

// fragmenter tracks the carry-over text between chunks and cuts each
// joined chunk at record boundaries
type fragmenter struct {
	startMarker string // "<log4j:event"
	endMarker   string // "</log4j:event>"
	carry       string
}

func newFragmenter(prefix string) *fragmenter {
	return &fragmenter{
		startMarker: "<" + prefix + ":event",
		endMarker:   "</" + prefix + ":event>",
	}
}

// next prepends the carry-over to chunk and returns the span running from
// the first record start to the last record end. Text after that span is
// kept as the new carry-over; text before the first record start is
// dropped, it can only be a prolog, a wrapper tag or whitespace because
// the carry-over always begins where the last complete record ended.
func (f *fragmenter) next(chunk string) string {
	text := f.carry + chunk

	start := f.indexStart(text)
	if start < 0 {
		// Keep just enough to complete a record start split by the boundary
		f.carry = tail(text, len(f.startMarker))
		return ""
	}

	last := strings.LastIndex(text, f.endMarker)
	if last < start {
		// Record still open
		f.carry = text[start:]
		return ""
	}

	cut := last + len(f.endMarker)
	f.carry = text[cut:]
	return text[start:cut]
}

// rest returns what is left after the last chunk, from the first record start
func (f *fragmenter) rest() string {
	start := f.indexStart(f.carry)
	if start < 0 {
		return ""
	}
	return f.carry[start:]
}

// indexStart finds the first record start marker followed by a delimiter,
// so "<log4j:eventSet" is not taken for a record
func (f *fragmenter) indexStart(s string) int {
	from := 0
	for {
		i := strings.Index(s[from:], f.startMarker)
		if i < 0 {
			return -1
		}
		i += from
		j := i + len(f.startMarker)
		if j >= len(s) {
			return -1
		}
		switch s[j] {
		case ' ', '\t', '\r', '\n', '>', '/':
			return i
		}
		from = j
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// splitChunks cuts raw into pieces of size bytes. Inputs up to
// smallInputFactor chunks long are returned whole.
func splitChunks(raw string, size int) []string {
	if size <= 0 || len(raw) <= smallInputFactor*size {
		return []string{raw}
	}

	chunks := make([]string, 0, (len(raw)+size-1)/size)
	for off := 0; off < len(raw); off += size {
		end := off + size
		if end > len(raw) {
			end = len(raw)
		}
		chunks = append(chunks, raw[off:end])
	}
	return chunks
}
