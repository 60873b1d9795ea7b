package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"course:enroll",
		"quiz:view",
		"quiz:submit",
		"attempt:view-own",
		"progress:view-own",
		"progress:update-own",
		"user:change_password",
	},
	"instructor": {
		"course:view",
		"course:create",
		"course:edit_own",
		"lesson:create",
		"quiz:view",
		"quiz:create",
		"quiz:edit_own",
		"attempt:view-all",
		"analytics:view",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
