// Package config loads route maps and tool settings for routetree.
//
// A route map declares router settings and a nested list of routes. It is
// stored as routes.json, routes.yaml (or .yml) or routes.toml:
//
//	{
//	  "anchor": "#",
//	  "canonicalize": true,
//	  "routes": [
//	    {
//	      "name": "application",
//	      "routes": [
//	        {"name": "home", "path": ""},
//	        {"name": "notifications"},
//	        {"name": "status", "path": ":user/status/:id", "options": {"view": "Status"}}
//	      ]
//	    }
//	  ]
//	}
//
// A route without "path" uses its name as path; "path": "" makes it share
// its parent's path. Maps can also be fetched from S3 with LoadURI:
//
//	cfg, err := config.LoadURI(ctx, "s3://my-bucket/app/routes.yaml")
//
// Tool settings (Env) come from ROUTETREE_* environment variables, with
// a .env file loaded first when present.
package config
