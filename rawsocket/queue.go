// Copyright 2025 The Outline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rawsocket

import (
	"net/netip"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// request is an outbound packet waiting for the transport.
type request struct {
	payload     []byte
	destination netip.Addr
	before      func() error
	after       func(err error, n int)
}

// requestQueue holds outbound requests in the order they were sent. It is not safe for concurrent use.
type requestQueue struct {
	q *linkedlistqueue.Queue
}

func newRequestQueue() *requestQueue {
	return &requestQueue{q: linkedlistqueue.New()}
}

func (rq *requestQueue) push(r *request) {
	rq.q.Enqueue(r)
}

// pop removes and returns the oldest request.
func (rq *requestQueue) pop() (*request, bool) {
	v, ok := rq.q.Dequeue()
	if !ok {
		return nil, false
	}
	return v.(*request), true
}

func (rq *requestQueue) len() int {
	return rq.q.Size()
}

// drain empties the queue and returns the requests it held, oldest first.
func (rq *requestQueue) drain() []*request {
	values := rq.q.Values()
	rq.q.Clear()
	out := make([]*request, len(values))
	for i, v := range values {
		out[i] = v.(*request)
	}
	return out
}
