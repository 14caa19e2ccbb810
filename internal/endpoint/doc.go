// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package endpoint provides the HTTP client for the text-generation endpoint.
//
// The endpoint accepts the conversation as a JSON array of turns and answers
// with an unframed text body that is streamed back as it is generated.
//
// # Key Types
//
//   - Client: HTTP client that opens reply streams
//   - ClientConfig: Endpoint URL and request options
//   - Response: An opened reply stream
//   - RequestError: Failure to open a reply stream
//
// # Usage
//
//	client := endpoint.NewClient()
//	resp, err := client.OpenStream(ctx, turns, requestID)
//	if err != nil {
//	    return err
//	}
//	defer resp.Body.Close()
//	dec := stream.OpenCharset(resp.Body, resp.Charset)
package endpoint
