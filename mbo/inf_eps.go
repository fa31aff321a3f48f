// Copyright 2020 ConsenSys AG
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mbo

import "math/big"

// InfEps is an extended optimization value: a rational part, an infinitesimal
// direction, and an unbounded flag. A negative infinitesimal marks a supremum
// that is approached but not attained (the constraint binding the optimum is
// strict).
type InfEps struct {
	unbounded bool
	rat       big.Rat
	eps       int
}

// Unbounded returns the extended value "plus infinity".
func Unbounded() InfEps {
	return InfEps{unbounded: true}
}

// Finite returns an attained finite value.
func Finite(r *big.Rat) InfEps {
	var v InfEps
	v.rat.Set(r)
	return v
}

// FiniteEps returns a finite value with the given infinitesimal direction.
func FiniteEps(r *big.Rat, eps int) InfEps {
	v := Finite(r)
	v.eps = sign(eps)
	return v
}

// IsFinite reports whether the value is not unbounded.
func (v InfEps) IsFinite() bool {
	return !v.unbounded
}

// Rational returns a copy of the rational part. It is zero for unbounded
// values.
func (v InfEps) Rational() *big.Rat {
	return new(big.Rat).Set(&v.rat)
}

// Eps returns the sign of the infinitesimal component.
func (v InfEps) Eps() int {
	return v.eps
}

// Cmp totally orders extended values: unbounded above every finite value,
// finite values by rational part then infinitesimal direction.
func (v InfEps) Cmp(o InfEps) int {
	switch {
	case v.unbounded && o.unbounded:
		return 0
	case v.unbounded:
		return 1
	case o.unbounded:
		return -1
	}
	if c := v.rat.Cmp(&o.rat); c != 0 {
		return c
	}
	return sign(v.eps - o.eps)
}

func (v InfEps) String() string {
	if v.unbounded {
		return "oo"
	}
	s := v.rat.RatString()
	switch {
	case v.eps > 0:
		return s + "+e"
	case v.eps < 0:
		return s + "-e"
	}
	return s
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
