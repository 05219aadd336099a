/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket contains only one type of object identified
by its primary key. Easy to store and load, and validate
the content before writing.
*/
package orm
