// Package redis stores token values in Redis so several machines can share
// one login. Every write is announced on a pub/sub channel, which lets
// Watch report changes made by other clients.
package redis
