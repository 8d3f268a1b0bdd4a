/*
Package nodegraph is a procedural node graph: documents are networks of typed
nodes connected by links, edited through invariant-preserving requests and
evaluated by lowering them to a flat proto network.

# Concept

A Document owns one root network. Edits are Requests drained through a FIFO
dispatcher; each may emit follow-up requests and Responses for the host UI.
Every mutation bumps the network generation. Evaluation flattens the network
(resolving nested networks, lambdas and disabled nodes) and runs the result,
either synchronously with Evaluate or on a background Worker whose stale
results are discarded.

# Usage

	doc := nodegraph.New(network, nodegraph.WithCatalog(registry.Builtin()))

	req, err := nodegraph.DecodeRequest([]byte(`{"request": "ConnectNodesByLink",
		"params": {"outputNode": 1, "inputNode": 2, "inputPosition": 0}}`))
	if err != nil {
		log.Fatal(err)
	}
	responses, err := doc.Dispatch(ctx, req)
	if err != nil {
		log.Printf("edit rejected: %v", err)
	}

	result, err := doc.Evaluate(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(nodegraph.Describe(result.Output))
*/
package nodegraph
