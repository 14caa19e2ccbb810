// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes a raw reply body into text fragments.
//
// The generation endpoint sends an unframed UTF-8 byte stream. Chunk
// boundaries are arbitrary, so a multi-byte character can arrive split
// across two reads. Decoder holds those bytes back in a carry buffer and
// prefixes them onto the next chunk.
//
// # Usage
//
//	dec := stream.Open(resp.Body)
//	defer dec.Close()
//	for {
//	    fragment, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err // *StreamReadError or *DecodeError
//	    }
//	    fmt.Print(fragment)
//	}
package stream
