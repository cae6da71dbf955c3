package domain

import (
	"encoding/json"
	"fmt"
)

// EncodeDocumentGraph serializes a graph as nested JSON records. Binary atom
// payloads are represented only by the has_payload flag, never embedded.
func EncodeDocumentGraph(g *DocumentGraph) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode document graph: %w", err)
	}
	return data, nil
}

// DecodeDocumentGraph reconstructs a graph from its serialized form.
func DecodeDocumentGraph(data []byte) (*DocumentGraph, error) {
	var g DocumentGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode document graph: %w", err)
	}
	if g.Atoms == nil {
		g.Atoms = map[string]KnowledgeAtom{}
	}
	if g.Hierarchy == nil {
		g.Hierarchy = map[string][]string{}
	}
	return &g, nil
}

// EncodeKnowledgeGraph serializes a merged project graph.
func EncodeKnowledgeGraph(g *KnowledgeGraph) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode knowledge graph: %w", err)
	}
	return data, nil
}

// DecodeKnowledgeGraph reconstructs a merged project graph.
func DecodeKnowledgeGraph(data []byte) (*KnowledgeGraph, error) {
	var g KnowledgeGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode knowledge graph: %w", err)
	}
	return &g, nil
}
