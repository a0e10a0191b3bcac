// Package api exposes the catalog over HTTP.
//
// All routes are mounted under a configurable prefix (default "/api"):
//
//	POST {prefix}/node/create         create or redefine a descriptor
//	GET  {prefix}/node/{id}           one node, ?group=in|out (default in)
//	GET  {prefix}/node/{id}/schema    JSON Schema of the node's inputs
//	POST {prefix}/node/delete         remove a node
//	GET  {prefix}/node/list           all nodes, or one group with ?group=
//	POST {prefix}/node/execute        run a node's adapter on JSON inputs
//	GET  {prefix}/object_info         host catalog listing
//
// Every response is JSON. Failures carry {"status": "failed", "message": ...};
// unexpected failures additionally carry a "traceback".
package api
