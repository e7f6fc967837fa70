// Package graphling provides an in-memory graph retrieval core for
// retrieval-augmented generation.
//
// Graphling builds immutable snapshots of an entity/relationship/passage
// graph, detects hierarchical communities over it, and answers retrieval
// queries by combining graph traversal with caller-supplied vector
// results through reciprocal rank fusion.
//
// # Basic Usage
//
// Create a client with a partitioning engine:
//
//	client, err := graphling.NewClient(&graphling.Config{
//		Engine: partition.NewLabelPropagation(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a dataset and build the first snapshot.
//	ds, err := source.LoadFile("dataset.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := client.IngestGraph(ctx, ds); err != nil {
//		log.Fatal(err)
//	}
//
// # Retrieval
//
// Retrieval starts from entity names recognized in the caller's query
// (by whatever means) and expands through the graph:
//
//	passages, err := client.Search(ctx, graphling.Query{
//		RecognizedEntities: []string{"Sam Altman"},
//		Depth:              2,
//		Limit:              10,
//	})
//
// # Communities
//
// DetectCommunities partitions the entity graph into a multi-level
// community hierarchy and publishes the result on the next snapshot:
//
//	result, err := client.DetectCommunities(ctx)
//
// # Concurrency
//
// Snapshots are immutable and swapped atomically: readers always see a
// complete snapshot, and a rebuild never blocks in-flight queries.
// Ingestion calls must be serialized by the caller.
//
// # Architecture
//
//   - pkg/graph: snapshot index and bounded-depth traversal
//   - pkg/partition: pluggable partitioning engines
//   - pkg/community: hierarchical detection and summarization
//   - pkg/search: rank fusion and the graph-based retriever
//   - pkg/extract: entity/relationship extraction backends
//   - pkg/nlp: LLM client interfaces
//   - pkg/source: dataset loaders (file, Neo4j)
package graphling
