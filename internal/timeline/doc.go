// Package timeline turns a case record into a positioned timeline graph.
//
// The pipeline has three stages: Normalize parses raw decision dates, Group
// buckets decisions into date columns, and Build walks the columns once to
// emit nodes and edges. All three are pure; concurrent calls for different
// cases share no state.
package timeline
