package driver

import "fmt"

const (
	// UpsertTriplesQuery is the single bulk statement behind ingestion. The
	// relation key is (subject, predicate, object): re-ingesting the same
	// fact overwrites confidence/source/span instead of adding an edge.
	UpsertTriplesQuery = `
		UNWIND $triples AS t
		MERGE (a:Entity {name: t.subject})
		MERGE (b:Entity {name: t.object})
		MERGE (a)-[r:REL {predicate: t.predicate}]->(b)
		SET r.confidence = t.confidence,
			r.source_doc = t.source_doc,
			r.span = t.span,
			r.updated_at = datetime()
	`

	SubgraphScanQuery = `
		MATCH (a:Entity)-[r:REL]->(b:Entity)
		RETURN a, r, b
		LIMIT 100
	`

	SubgraphScanBySourceQuery = `
		MATCH (a:Entity)-[r:REL]->(b:Entity)
		WHERE r.source_doc = $source_doc
		RETURN a, r, b
		LIMIT 100
	`

	ListRelationsQuery = `
		MATCH (a:Entity)-[r:REL]->(b:Entity)
		RETURN a.name AS subject, r.predicate AS predicate, b.name AS object,
			r.confidence AS confidence, r.source_doc AS source_doc, r.span AS span
		ORDER BY subject, predicate, object
		LIMIT $limit
	`

	ListRelationsBySourceQuery = `
		MATCH (a:Entity)-[r:REL]->(b:Entity)
		WHERE r.source_doc = $source_doc
		RETURN a.name AS subject, r.predicate AS predicate, b.name AS object,
			r.confidence AS confidence, r.source_doc AS source_doc, r.span AS span
		ORDER BY subject, predicate, object
		LIMIT $limit
	`

	DeleteRelationQuery = `
		MATCH (a:Entity {name: $subject})-[r:REL {predicate: $predicate}]->(b:Entity {name: $object})
		DELETE r
		RETURN count(r) AS deleted
	`

	UpdateRelationConfidenceQuery = `
		MATCH (a:Entity {name: $subject})-[r:REL {predicate: $predicate}]->(b:Entity {name: $object})
		SET r.confidence = $confidence
		RETURN count(r) AS updated
	`

	DeleteSourceRelationsQuery = `
		MATCH ()-[r:REL {source_doc: $source_doc}]->()
		WITH r LIMIT $batch
		DELETE r
		RETURN count(r) AS deleted
	`

	PruneOrphanEntitiesQuery = `
		MATCH (n:Entity)
		WHERE NOT (n)--()
		WITH n LIMIT $batch
		DELETE n
		RETURN count(n) AS pruned
	`

	// MergeEntitiesQuery redirects every relation of $from onto $into and
	// removes $from, as one transactional statement. MERGE on the
	// (endpoint, predicate) key folds a redirected edge onto an existing
	// equivalent one instead of creating a parallel duplicate. Edges between
	// $from and $into themselves are dropped with the detach delete rather
	// than turned into self-loops.
	MergeEntitiesQuery = `
		MATCH (old:Entity {name: $from})
		MERGE (new:Entity {name: $into})
		WITH old, new
		OPTIONAL MATCH (old)-[out:REL]->(tgt:Entity)
		WHERE tgt <> new
		FOREACH (_ IN CASE WHEN tgt IS NULL THEN [] ELSE [1] END |
			MERGE (new)-[r:REL {predicate: out.predicate}]->(tgt)
			SET r.confidence = out.confidence,
				r.source_doc = out.source_doc,
				r.span = out.span
		)
		WITH old, new, count(out) AS redirected_out
		OPTIONAL MATCH (src:Entity)-[in:REL]->(old)
		WHERE src <> new
		FOREACH (_ IN CASE WHEN src IS NULL THEN [] ELSE [1] END |
			MERGE (src)-[r:REL {predicate: in.predicate}]->(new)
			SET r.confidence = in.confidence,
				r.source_doc = in.source_doc,
				r.span = in.span
		)
		WITH old, redirected_out, count(in) AS redirected_in
		DETACH DELETE old
		RETURN redirected_out + redirected_in AS redirected
	`

	DistinctSourcesQuery = `
		MATCH ()-[r:REL]->()
		WHERE r.source_doc IS NOT NULL
		RETURN DISTINCT r.source_doc AS source_doc
		ORDER BY source_doc
	`

	EntityCountQuery = `
		MATCH (n:Entity) RETURN count(n) AS count
	`

	RelationCountQuery = `
		MATCH ()-[r:REL]->() RETURN count(r) AS count
	`

	AvgDegreeQuery = `
		MATCH (n:Entity)
		OPTIONAL MATCH (n)-[r]-()
		WITH n, count(DISTINCT r) AS degree
		RETURN avg(degree) AS avg_degree
	`

	SearchEntitiesQuery = `
		MATCH (n:Entity)
		WHERE n.name CONTAINS $keyword
		RETURN n.name AS name
		LIMIT $limit
	`

	TopEntitiesQuery = `
		MATCH (n:Entity)-[r]-()
		RETURN n.name AS name, count(r) AS degree
		ORDER BY degree DESC
		LIMIT $limit
	`
)

// SubgraphSeedQuery builds the seeded traversal. The hop bound cannot be a
// Cypher parameter, so the validated depth is interpolated. Paths are capped
// first, then unwound into distinct relationships with both endpoints, since
// the driver exposes only element ids on a bare relationship value.
func SubgraphSeedQuery(depth int, bySource bool) string {
	where := ""
	if bySource {
		where = "WHERE ALL(rel IN r WHERE rel.source_doc = $source_doc)\n\t\t"
	}
	return fmt.Sprintf(`
		MATCH (n:Entity {name: $seed})-[r*1..%d]-(m:Entity)
		%sWITH r LIMIT 100
		UNWIND r AS rel
		WITH DISTINCT rel
		RETURN startNode(rel) AS a, rel AS r, endNode(rel) AS b
		LIMIT 100
	`, depth, where)
}

// ShortestPathQuery builds the bounded shortest-path lookup between two
// entities.
func ShortestPathQuery(maxDepth int) string {
	return fmt.Sprintf(`
		MATCH path = shortestPath(
			(a:Entity {name: $from})-[*1..%d]-(b:Entity {name: $to})
		)
		RETURN [x IN nodes(path) | x.name] AS names,
			[rel IN relationships(path) | rel.predicate] AS predicates,
			[rel IN relationships(path) | rel.confidence] AS confidences
	`, maxDepth)
}
