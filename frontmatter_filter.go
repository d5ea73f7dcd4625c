package chatmark

import "bytes"

// StripFrontMatter removes a leading front matter block (---, +++ or ;;;
// fenced) from src. The block must open on the first line, its first body
// line must look like metadata, and the closing fence must match the opener.
// Anything else passes through untouched. Render applies this by default;
// it is exported for callers that feed Parse directly.
func StripFrontMatter(src []byte) []byte {
	openLine, openNext, ok := nextLine(src, 0)
	if !ok {
		return src
	}
	delim, isFrontMatter := frontMatterDelimiter(openLine)
	if !isFrontMatter {
		return src
	}
	secondLine, secondNext, ok := nextLine(src, openNext)
	if !ok || !frontMatterMetadataLikely(secondLine) {
		return src
	}
	for idx := secondNext; idx <= len(src); {
		line, next, ok := nextLine(src, idx)
		if !ok {
			return src
		}
		if bytes.Equal(bytes.TrimSpace(line), delim) {
			return src[next:]
		}
		if next == idx {
			return src
		}
		idx = next
	}
	return src
}

func nextLine(src []byte, start int) ([]byte, int, bool) {
	if start > len(src) {
		return nil, 0, false
	}
	if start == len(src) {
		return src[start:], start, true
	}
	i := bytes.IndexByte(src[start:], '\n')
	if i < 0 {
		return trimCR(src[start:]), len(src), true
	}
	lineEnd := start + i
	return trimCR(src[start:lineEnd]), lineEnd + 1, true
}

func frontMatterDelimiter(line []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(trimBOM(line))
	switch {
	case bytes.Equal(trimmed, []byte("---")):
		return []byte("---"), true
	case bytes.Equal(trimmed, []byte("+++")):
		return []byte("+++"), true
	case bytes.Equal(trimmed, []byte(";;;")):
		return []byte(";;;"), true
	default:
		return nil, false
	}
}

func frontMatterMetadataLikely(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	if bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("[")) {
		return true
	}
	if bytes.Contains(trimmed, []byte(":")) || bytes.Contains(trimmed, []byte("=")) {
		return true
	}
	return false
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
