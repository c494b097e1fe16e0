package languages

// JavaQuery finds System.getenv("KEY") and System.getenv().get("KEY")
const JavaQuery = `
[
  (method_invocation
    object: (identifier) @obj
    name: (identifier) @method
    arguments: (argument_list
      [
        (string_literal) @key
        (binary_expression) @full_expr
        (identifier) @var
      ]
    )
  )
  (method_invocation
    object: (method_invocation
      object: (identifier) @obj
      name: (identifier) @method1
    )
    name: (identifier) @method2
    arguments: (argument_list
      [
        (string_literal) @key
        (binary_expression) @full_expr
        (identifier) @var
      ]
    )
  )
]
`

func matchJava(c Captures) (Match, bool) {
	if c["obj"] != "System" {
		return Match{}, false
	}
	if method, ok := c["method"]; ok {
		if method != "getenv" {
			return Match{}, false
		}
	} else if c["method1"] != "getenv" || c["method2"] != "get" {
		return Match{}, false
	}
	return argument(c)
}
