package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:list",
		"quiz:view",
		"attempt:submit",
		"result:view-own",
	},
	"instructor": {
		"quiz:create",
		"quiz:list",
		"quiz:view",
		"result:view-all",
		"evaluation:record",
		"result:publish",
	},
	"admin": {
		"*", // everything
	},
}
