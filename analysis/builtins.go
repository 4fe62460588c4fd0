package analysis

// Builtins returns the default signature table. Each call returns fresh
// signatures that the caller may modify.
func Builtins() []*Signature {
	return []*Signature{
		// Arithmetic.
		binary("+", Number, Number, Number),
		binary("+", String, String, String),
		binary("+", Array, Array, Array),
		unary("+", Number, Number),
		unary("+", Array, Array),
		binary("-", Number, Number, Number),
		binary("-", Array, Array, Array),
		unary("-", Number, Number),
		binary("*", Number, Number, Number),
		binary("/", Number, Number, Number),
		binary("%", Number, Number, Number),
		binary("mod", Number, Number, Number),
		binary("^", Number, Number, Number),
		binary("atan2", Number, Number, Number),
		binary("max", Number, Number, Number),
		binary("min", Number, Number, Number),
		binary("#", Array, Number, Any),

		// Comparison.
		binary("==", Number, Number, Boolean),
		binary("==", String, String, Boolean),
		binary("==", Object, Object, Boolean),
		binary("!=", Number, Number, Boolean),
		binary("!=", String, String, Boolean),
		binary("!=", Object, Object, Boolean),
		binary(">", Number, Number, Boolean),
		binary("<", Number, Number, Boolean),
		binary(">=", Number, Number, Boolean),
		binary("<=", Number, Number, Boolean),
		binary(">>", Object, String, Object),
		binary("isEqualTo", Any, Any, Boolean),

		// Logic.
		unary("!", Boolean, Boolean),
		unary("not", Boolean, Boolean),
		binary("&&", Boolean, Boolean, Boolean),
		binary("&&", Boolean, Code, Boolean),
		binary("and", Boolean, Boolean, Boolean),
		binary("and", Boolean, Code, Boolean),
		binary("||", Boolean, Boolean, Boolean),
		binary("||", Boolean, Code, Boolean),
		binary("or", Boolean, Boolean, Boolean),
		binary("or", Boolean, Code, Boolean),

		// Conditionals.
		unary("if", Boolean, Boolean),
		binary("then", Boolean, Code, Nothing),
		binary("then", Boolean, Array, Nothing).hook(thenElse),
		binary("else", Code, Code, Array).hook(elseBranches),
		binary("exitWith", Boolean, Code, Nothing),
		unary("switch", Any, Object).hook(tagged("switch")),
		unary("case", Any, Object).hook(tagged("case")),
		binary(":", Object, Code, Nothing),
		unary("default", Code, Nothing),

		// Loops.
		unary("while", Code, Object).hook(whileCondition),
		unary("for", String, For).hook(forIterator),
		unary("for", Array, For).hook(forClauses),
		binary("from", For, Number, For).hook(forward),
		binary("to", For, Number, For).hook(forward),
		binary("step", For, Number, For).hook(forward),
		binary("do", For, Code, Nothing).scope(loopLocals),
		binary("do", Object, Code, Nothing).hook(doBlock),
		unary("waitUntil", Code, Nothing),
		binary("forEach", Code, Array, Nothing).scope(forEachLocals),
		unary("count", Array, Number),
		unary("count", String, Number),
		binary("count", Code, Array, Number).scope(elementLocals(1)),
		binary("select", Array, Number, Any),
		binary("select", Array, Boolean, Any),
		binary("select", Array, Array, Array),
		binary("select", Array, Code, Array).scope(elementLocals(0)),
		binary("select", String, Array, String),
		binary("apply", Array, Code, Array).scope(elementLocals(0)),
		binary("findIf", Array, Code, Number).scope(elementLocals(0)),

		// Code.
		unary("call", Code, Any).hook(callCode),
		binary("call", Any, Code, Any).hook(callCode),
		binary("spawn", Any, Code, Object).hook(spawnCode),
		unary("execVM", String, Object),
		binary("execVM", Any, String, Object),
		unary("compile", String, Code),
		unary("try", Code, Object).hook(tryBlock),
		binary("catch", Object, Code, Nothing).scope(catchLocals),
		unary("throw", Any, Nothing),
		unary("params", Array, Boolean).hook(declareParams),
		binary("params", Any, Array, Boolean).hook(declareParams),
		unary("isNil", Code, Boolean),
		unary("isNil", String, Boolean),
		unary("with", Object, Object).hook(withNamespace),
		unary("sleep", Number, Nothing),

		// Output and conversion.
		unary("hint", String, Nothing),
		unary("diag_log", Any, Nothing),
		unary("systemChat", String, Nothing),
		unary("format", Array, String),
		unary("str", Any, String),
		unary("typeName", Any, String),
		unary("toString", Array, String),
		unary("parseNumber", String, Number),
		unary("toLower", String, String),
		unary("toUpper", String, String),

		// Arrays.
		binary("pushBack", Array, Any, Number),
		binary("append", Array, Array, Nothing),
		binary("in", Any, Array, Boolean),
		binary("in", String, String, Boolean),
		binary("find", Array, Any, Number),
		binary("find", String, String, Number),
		binary("resize", Array, Number, Nothing),
		binary("deleteAt", Array, Number, Any),

		// Variables.
		binary("getVariable", Object, String, Any),
		binary("getVariable", Object, Array, Any),
		binary("setVariable", Object, Array, Nothing),

		// Math.
		unary("random", Number, Number),
		unary("floor", Number, Number),
		unary("round", Number, Number),
		unary("ceil", Number, Number),
		unary("abs", Number, Number),
		unary("sqrt", Number, Number),

		// World.
		nular("player", Object),
		nular("objNull", Object),
		nular("time", Number),
		nular("nil", Nothing),
		nular("isServer", Boolean),
		nular("hasInterface", Boolean),
		nular("allUnits", Array),
		unary("alive", Object, Boolean),
		unary("getPos", Object, Array),
		binary("setPos", Object, Array, Nothing),
	}
}

func nular(keyword string, ret Kind) *Signature {
	return &Signature{Keyword: keyword, Form: Nular, Return: ret}
}

func unary(keyword string, right, ret Kind) *Signature {
	return &Signature{Keyword: keyword, Form: Unary, Right: right, Return: ret}
}

func binary(keyword string, left, right, ret Kind) *Signature {
	return &Signature{
		Keyword: keyword, Form: Binary, Left: left, Right: right, Return: ret,
	}
}

func (s *Signature) hook(fn func(Interpreter, []*Value) *Value) *Signature {
	s.Execute = fn

	return s
}

func (s *Signature) scope(fn func([]*Value) map[string]*Value) *Signature {
	s.Locals = fn

	return s
}

// last returns the final operand.
func last(ops []*Value) *Value { return ops[len(ops)-1] }

func callCode(in Interpreter, ops []*Value) *Value {
	var this *Value
	if len(ops) == 2 {
		this = ops[0]
	}

	return in.ExecuteCode(last(ops), this, nil).typeOnly()
}

func spawnCode(in Interpreter, ops []*Value) *Value {
	in.ExecuteCode(ops[1], ops[0], nil)

	return &Value{Kind: Object}
}

func tryBlock(in Interpreter, ops []*Value) *Value {
	in.ExecuteCode(ops[0], nil, nil)

	return &Value{Kind: Object, Tag: "try"}
}

func thenElse(in Interpreter, ops []*Value) *Value {
	for _, e := range ops[1].Elements {
		if e != nil && e.Kind == Code {
			in.ExecuteCode(e, nil, nil)
		}
	}

	return &Value{}
}

func elseBranches(_ Interpreter, ops []*Value) *Value {
	return &Value{Kind: Array, Elements: []*Value{ops[0], ops[1]}}
}

func tagged(tag string) func(Interpreter, []*Value) *Value {
	return func(_ Interpreter, _ []*Value) *Value {
		return &Value{Kind: Object, Tag: tag}
	}
}

func whileCondition(_ Interpreter, ops []*Value) *Value {
	return &Value{Kind: Object, Tag: "while", Elements: []*Value{ops[0]}}
}

func withNamespace(_ Interpreter, ops []*Value) *Value {
	return &Value{Kind: Object, Tag: "with", Content: ops[0].Content}
}

func doBlock(in Interpreter, ops []*Value) *Value {
	ctl, body := ops[0], ops[1]

	switch ctl.Tag {
	case "with":
		if ctl.Content != "" {
			restore := in.Namespace(ctl.Content)
			defer restore()
		}
	case "while":
		for _, cond := range ctl.Elements {
			in.ExecuteCode(cond, nil, nil)
		}
	}

	in.ExecuteCode(body, nil, nil)

	return &Value{}
}

func forIterator(_ Interpreter, ops []*Value) *Value {
	v := &Value{Kind: For}
	if ops[0].Known {
		v.Iterator = ops[0].Content
	}

	return v
}

func forClauses(in Interpreter, ops []*Value) *Value {
	for _, e := range ops[0].Elements {
		if e != nil && e.Kind == Code {
			in.ExecuteCode(e, nil, nil)
		}
	}

	return &Value{Kind: For}
}

func forward(_ Interpreter, ops []*Value) *Value { return ops[0] }

func declareParams(in Interpreter, ops []*Value) *Value {
	for _, e := range last(ops).Elements {
		switch {
		case e == nil:
		case e.Kind == String:
			in.AddPrivates(e)
		case e.Kind == Array && len(e.Elements) > 0 && e.Elements[0] != nil:
			in.AddPrivates(e.Elements[0])
		}
	}

	return &Value{Kind: Boolean}
}

func loopLocals(ops []*Value) map[string]*Value {
	if ops[0].Iterator == "" {
		return nil
	}

	return map[string]*Value{ops[0].Iterator: {Kind: Number}}
}

func forEachLocals(ops []*Value) map[string]*Value {
	return map[string]*Value{
		"_x":            {Kind: elementKind(ops[1])},
		"_forEachIndex": {Kind: Number},
	}
}

func elementLocals(array int) func([]*Value) map[string]*Value {
	return func(ops []*Value) map[string]*Value {
		return map[string]*Value{"_x": {Kind: elementKind(ops[array])}}
	}
}

func catchLocals([]*Value) map[string]*Value {
	return map[string]*Value{"_exception": {Kind: Object}}
}

// elementKind returns the kind shared by every element of arr, or Nothing.
func elementKind(arr *Value) Kind {
	if arr == nil || len(arr.Elements) == 0 {
		return Nothing
	}

	var kind Kind

	for i, e := range arr.Elements {
		if e == nil {
			return Nothing
		}

		if i == 0 {
			kind = e.Kind
		} else if e.Kind != kind {
			return Nothing
		}
	}

	return kind
}
