// Package dsl declares goform schemas fluently or from YAML files.
//
// Builder API
//
//	f := dsl.Form().
//		Field("age").Initial(12).Numeric().
//		Field("name").Required().MinLength(3).Warn(validators.Pattern("A.+")).
//		DisabledWhen("age", rules.Gt, 10).
//		Field("items").Elements(dsl.Form().
//			Field("sku").Required().
//			Field("qty").Initial(1).Min(1)).
//		MustBuild()
//
// Field returns a step that configures one field; every step method returns
// the step so calls chain, and Field/Build/MustBuild on a step go back to the
// builder. Validators added to a field are composed in declaration order and
// warnings (Warn) never affect validity.
//
// YAML files
//
// LoadYAML and LoadYAMLFile read the File format (see File) and return the
// same builder, so code can add what YAML cannot express (async validators,
// external disable streams) before building. Unknown keys are rejected.
package dsl
