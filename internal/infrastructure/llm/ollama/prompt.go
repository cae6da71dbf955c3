package ollama

import (
	"fmt"

	"github.com/kirillkom/docgraph/internal/core/ports"
)

func buildChunkPrompt(req ports.ChunkRequest) string {
	titleClause := ""
	if req.WantTitle {
		titleClause = `Also set "title" (string) and "authors" (array of strings) from the document head.
`
	}

	return fmt.Sprintf(`You are a document structure classifier for a %s.
The document has %d blocks total; you see blocks %d..%d, one per line as
[index] page size bold | text.
Return a strict JSON object:
{"title": "", "authors": [], "blocks": [{"block_index": n, "type": "", "topics": [], "entities": [], "importance": 0.0}]}
Allowed types: section_header, paragraph, quote, citation, author, table, figure, equation, list_item.
block_index must echo the bracketed index of the line. Classify every block you see and no others.
Topics are subject matter only, never venue or affiliation names. Importance is 0..1.
%sNo markdown, no extra keys.

Blocks:
%s`, req.DocumentType, req.TotalBlocks, req.ChunkStart, req.ChunkEnd-1, titleClause, req.Context)
}

func buildSummaryPrompt(req ports.SummaryRequest) string {
	return fmt.Sprintf(`You summarize a %s titled %q.
Return a strict JSON object with keys:
sentence (one sentence), paragraph (3-5 sentences), full (up to 300 words).
No markdown, no extra keys.

Document excerpt:
%s`, req.DocumentType, req.Title, req.Context)
}

func buildVisionPrompt() string {
	return `Describe this figure from a document in one or two sentences.
State what it shows, not how it looks. Plain text only.`
}
