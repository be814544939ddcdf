// Package config loads xmigraph settings from a TOML file and the
// environment.
//
// # File Format
//
// The file lives at $XDG_CONFIG_HOME/xmigraph/config.toml by default:
//
//	[leanix]
//	instance  = "acme.leanix.net"
//	api_token = "..."
//	group_key = "freedraw"
//	rate_limit = 2      # requests per second
//	rate_burst = 4
//
//	[cache]
//	backend = "redis"   # file, redis, mongo or none
//	ttl     = "24h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
//	[styles]
//	Class = "shape=cube;whiteSpace=wrap;html=1;"
//
// # Environment
//
// [Load] reads an optional .env file first (see [LoadDotEnv]) and then
// overlays LEANIX_INSTANCE, LEANIX_API_TOKEN, XMIGRAPH_CACHE and
// XMIGRAPH_ADDR on top of the file values. Variables already present in the
// process environment win over .env entries.
package config
