package bgv

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/bgv/ring"
	"github.com/tuneinsight/bgv/utils/buffer"
	"github.com/tuneinsight/bgv/utils/sampling"
)

var (
	flagParamString = flag.String("params", "", "specify the test cryptographic parameters as a JSON string. Overrides the default test parameters.")
	flagPrintNoise  = flag.Bool("print-noise", false, "print the residual noise budget after each evaluation step")
)

// testParametersTiny is small enough to follow every coefficient by hand:
// one multiplicative level, a 14-bit top modulus and sparse ternary
// distributions keeping the noise far from the correctness bound.
var testParametersTiny = ParametersLiteral{
	N:                8,
	Q:                []uint64{12289, 1153},
	Depth:            1,
	PlaintextModulus: 17,
	Xe:               ring.Ternary{H: 2},
	Xs:               ring.Ternary{H: 1},
	DigitBase:        2,
}

// testParametersMedium exercises a depth-2 chain with 40+ bit moduli and the
// default Gaussian error distribution.
var testParametersMedium = ParametersLiteral{
	N:                128,
	Q:                []uint64{0x7fffffd8001, 0x3ffffe80001, 0x1ffffe0001},
	Depth:            2,
	PlaintextModulus: 257,
	Xe:               ring.DiscreteGaussian{Sigma: DefaultSigma, Bound: DefaultNoiseBound},
	Xs:               ring.Ternary{P: 2.0 / 3.0},
	DigitBase:        256,
}

var testParamsLiterals = []ParametersLiteral{testParametersTiny, testParametersMedium}

func testName(opname string, p Parameters) string {
	return fmt.Sprintf("%s/logN=%d/levels=%d/t=%d", opname, p.LogN(), p.Depth()+1, p.PlaintextModulus())
}

type testContext struct {
	params Parameters
	prng   *sampling.KeyedPRNG
	ecd    *Encoder
	kgen   *KeyGenerator
	sk     *SecretKey
	pk     *PublicKey
	rlk    *RelinearizationKey
	enc    *Encryptor
	dec    *Decryptor
	eval   *Evaluator
}

func genTestContext(pl ParametersLiteral) (tc *testContext, err error) {

	tc = &testContext{}

	if tc.params, err = NewParametersFromLiteral(pl); err != nil {
		return nil, err
	}

	if tc.prng, err = sampling.NewKeyedPRNG([]byte{'t', 'e', 's', 't'}); err != nil {
		return nil, err
	}

	tc.ecd = NewEncoder(tc.params)
	tc.kgen = NewKeyGenerator(tc.params)
	tc.sk, tc.pk, tc.rlk = tc.kgen.GenKeysNew(tc.prng)
	tc.enc = NewEncryptor(tc.params, tc.pk)
	tc.dec = NewDecryptor(tc.params, tc.sk)
	tc.eval = NewEvaluator(tc.params)

	return tc, nil
}

// newTestVectors encrypts the provided values and returns the plaintext and
// ciphertext alongside them.
func (tc *testContext) newTestVectors(t *testing.T, values []uint64) (pt *Plaintext, ct *Ciphertext) {

	pt, err := tc.ecd.EncodeNew(values)
	require.NoError(t, err)

	ct, err = tc.enc.EncryptNew(pt, tc.prng)
	require.NoError(t, err)

	return
}

func (tc *testContext) printNoise(t *testing.T, opname string, ct *Ciphertext) {
	if *flagPrintNoise {
		t.Logf("residual noise budget after %s: %.2f bits", opname, tc.eval.NoiseBudget(ct))
	}
}

// mulVecModT returns the negacyclic product of the message polynomials a and
// b modulo X^N+1 and the plaintext modulus t.
func mulVecModT(a, b []uint64, N int, t uint64) (out []uint64) {

	out = make([]uint64, N)
	for i, ai := range a {
		for j, bj := range b {
			v := (ai * bj) % t
			if i+j < N {
				out[i+j] = (out[i+j] + v) % t
			} else {
				out[i+j-N] = (out[i+j-N] + t - v) % t
			}
		}
	}

	return
}

func TestBGV(t *testing.T) {

	paramsLiterals := testParamsLiterals

	if *flagParamString != "" {
		var jsonParams ParametersLiteral
		if err := json.Unmarshal([]byte(*flagParamString), &jsonParams); err != nil {
			t.Fatal(err)
		}
		paramsLiterals = []ParametersLiteral{jsonParams}
	}

	for _, pl := range paramsLiterals {

		tc, err := genTestContext(pl)
		require.NoError(t, err)

		for _, testSet := range []func(tc *testContext, t *testing.T){
			testParameters,
			testEncoder,
			testEncryptor,
			testEvaluatorAdd,
			testEvaluatorMul,
			testEvaluatorModSwitch,
			testNoiseBudget,
			testCodec,
		} {
			testSet(tc, t)
		}
	}
}

func testParameters(tc *testContext, t *testing.T) {

	params := tc.params

	t.Run(testName("Parameters/Accessors", params), func(t *testing.T) {

		require.Equal(t, params.Depth(), params.MaxLevel())
		require.Equal(t, params.Depth()+1, len(params.Q()))

		// fresh ciphertexts live under the largest modulus
		require.Equal(t, params.Q()[0], params.QAtLevel(params.MaxLevel()))
		require.Equal(t, params.Q()[params.Depth()], params.QAtLevel(0))

		for level := 0; level <= params.MaxLevel(); level++ {
			q := params.QAtLevel(level)
			require.Equal(t, q/params.PlaintextModulus(), params.Delta(level))
			require.Equal(t, float64(q)/(2*float64(params.PlaintextModulus())), params.NoiseBound(level))
		}
	})

	t.Run(testName("Parameters/Marshalling", params), func(t *testing.T) {

		pl := ParametersLiteral{
			N:                params.N(),
			Q:                params.Q(),
			Depth:            params.Depth(),
			PlaintextModulus: params.PlaintextModulus(),
			Xe:               params.Xe(),
			Xs:               params.Xs(),
			DigitBase:        params.DigitBase(),
		}

		data, err := json.Marshal(pl)
		require.NoError(t, err)

		var plRec ParametersLiteral
		require.NoError(t, json.Unmarshal(data, &plRec))

		paramsRec, err := NewParametersFromLiteral(plRec)
		require.NoError(t, err)

		require.True(t, params.Equal(&paramsRec))
		require.Equal(t, params.Digest(), paramsRec.Digest())
	})
}

func TestInvalidParameters(t *testing.T) {

	for _, pl := range []ParametersLiteral{
		// N not a power of two
		{N: 12, Q: []uint64{12289}, Depth: 0, PlaintextModulus: 17},
		// chain not strictly decreasing
		{N: 8, Q: []uint64{1153, 12289}, Depth: 1, PlaintextModulus: 17},
		{N: 8, Q: []uint64{12289, 12289}, Depth: 1, PlaintextModulus: 17},
		// depth does not match the chain length
		{N: 8, Q: []uint64{12289, 1153}, Depth: 3, PlaintextModulus: 17},
		// plaintext modulus too small
		{N: 8, Q: []uint64{12289}, Depth: 0, PlaintextModulus: 1},
		// smallest modulus does not exceed the plaintext modulus
		{N: 8, Q: []uint64{12289, 13}, Depth: 1, PlaintextModulus: 17},
		// empty chain
		{N: 8, Q: nil, Depth: 0, PlaintextModulus: 17},
		// uniform secrets have no noise bound
		{N: 8, Q: []uint64{12289}, Depth: 0, PlaintextModulus: 17, Xs: ring.Uniform{}},
	} {
		_, err := NewParametersFromLiteral(pl)
		require.ErrorIs(t, err, ErrInvalidParameters)
	}
}

func testEncoder(tc *testContext, t *testing.T) {

	params := tc.params
	T := params.PlaintextModulus()

	t.Run(testName("Encoder/Uint", params), func(t *testing.T) {

		values := make([]uint64, params.N())
		for i := range values {
			values[i] = uint64(i) % T
		}

		pt, err := tc.ecd.EncodeNew(values)
		require.NoError(t, err)

		have := make([]uint64, params.N())
		require.NoError(t, tc.ecd.Decode(pt, have))
		require.Equal(t, values, have)
	})

	t.Run(testName("Encoder/Int", params), func(t *testing.T) {

		half := int64(T) / 2
		values := make([]int64, params.N())
		for i := range values {
			values[i] = int64(i)%half - half/2
		}

		pt, err := tc.ecd.EncodeNew(values)
		require.NoError(t, err)

		have := make([]int64, params.N())
		require.NoError(t, tc.ecd.Decode(pt, have))
		require.Equal(t, values, have)
	})

	t.Run(testName("Encoder/Boundary", params), func(t *testing.T) {

		// t-1 and -1 are the same residue and must encode identically
		ptU, err := tc.ecd.EncodeNew([]uint64{T - 1})
		require.NoError(t, err)

		ptI, err := tc.ecd.EncodeNew([]int64{-1})
		require.NoError(t, err)

		require.True(t, ptU.Value.Equal(ptI.Value))
	})

	t.Run(testName("Encoder/OutOfRange", params), func(t *testing.T) {

		_, err := tc.ecd.EncodeNew([]uint64{T})
		require.ErrorIs(t, err, ErrValueOutOfRange)

		_, err = tc.ecd.EncodeNew([]int64{int64(T+1) / 2})
		require.ErrorIs(t, err, ErrValueOutOfRange)

		_, err = tc.ecd.EncodeNew([]int64{-int64(T+1) / 2})
		require.ErrorIs(t, err, ErrValueOutOfRange)

		// the magnitude of MinInt64 has no int64 negation; the range check
		// must not overflow around it
		_, err = tc.ecd.EncodeNew([]int64{math.MinInt64})
		require.ErrorIs(t, err, ErrValueOutOfRange)

		_, err = tc.ecd.EncodeNew(make([]uint64, params.N()+1))
		require.ErrorIs(t, err, ErrValueOutOfRange)
	})
}

func testEncryptor(tc *testContext, t *testing.T) {

	params := tc.params

	t.Run(testName("Encryptor/EncryptDecrypt", params), func(t *testing.T) {

		values := []uint64{3, 5}
		_, ct := tc.newTestVectors(t, values)

		require.Equal(t, params.MaxLevel(), ct.Level)
		require.Equal(t, 1, ct.Degree())
		require.Greater(t, tc.eval.NoiseBudget(ct), 0.0)
		tc.printNoise(t, "Encrypt", ct)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ct)
		require.False(t, noiseOverflow)

		have := make([]uint64, len(values))
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, values, have)
	})

	t.Run(testName("Encryptor/EncryptZero", params), func(t *testing.T) {

		ct := tc.enc.EncryptZeroNew(tc.prng)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ct)
		require.False(t, noiseOverflow)

		have := make([]uint64, params.N())
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, make([]uint64, params.N()), have)
	})

	t.Run(testName("Encryptor/LevelMismatch", params), func(t *testing.T) {

		pt := NewPlaintext(params, 0)
		if params.MaxLevel() > 0 {
			_, err := tc.enc.EncryptNew(pt, tc.prng)
			require.ErrorIs(t, err, ErrLevelMismatch)
		}
	})
}

func testEvaluatorAdd(tc *testContext, t *testing.T) {

	params := tc.params
	T := params.PlaintextModulus()

	t.Run(testName("Evaluator/Add", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})

		ctSum, err := tc.eval.AddNew(ct0, ct1)
		require.NoError(t, err)
		require.Equal(t, ct0.Noise+ct1.Noise, ctSum.Noise)
		tc.printNoise(t, "Add", ctSum)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctSum)
		require.False(t, noiseOverflow)

		have := make([]uint64, 1)
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, []uint64{8}, have)
	})

	t.Run(testName("Evaluator/AddVec", params), func(t *testing.T) {

		values0 := make([]uint64, params.N())
		values1 := make([]uint64, params.N())
		want := make([]uint64, params.N())
		for i := range values0 {
			values0[i] = uint64(i) % T
			values1[i] = uint64(3*i+1) % T
			want[i] = (values0[i] + values1[i]) % T
		}

		_, ct0 := tc.newTestVectors(t, values0)
		_, ct1 := tc.newTestVectors(t, values1)

		ctSum, err := tc.eval.AddNew(ct0, ct1)
		require.NoError(t, err)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctSum)
		require.False(t, noiseOverflow)

		have := make([]uint64, params.N())
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, want, have)
	})

	t.Run(testName("Evaluator/Sub", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})

		ctDiff, err := tc.eval.SubNew(ct0, ct1)
		require.NoError(t, err)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctDiff)
		require.False(t, noiseOverflow)

		have := make([]int64, 1)
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, []int64{-2}, have)
	})

	t.Run(testName("Evaluator/Neg", params), func(t *testing.T) {

		_, ct := tc.newTestVectors(t, []uint64{5})

		ctNeg := tc.eval.NegNew(ct)
		require.Equal(t, ct.Noise, ctNeg.Noise)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctNeg)
		require.False(t, noiseOverflow)

		have := make([]int64, 1)
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, []int64{-5}, have)
	})

	t.Run(testName("Evaluator/AddDegree2", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})
		_, ct2 := tc.newTestVectors(t, []uint64{7})

		ctMul, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)

		// degree-2 plus degree-1 yields a degree-2 ciphertext
		ctSum, err := tc.eval.AddNew(ctMul, ct2)
		require.NoError(t, err)
		require.Equal(t, 2, ctSum.Degree())

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctSum)
		require.False(t, noiseOverflow)

		have := make([]uint64, 1)
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, []uint64{(3*5 + 7) % params.PlaintextModulus()}, have)
	})

	t.Run(testName("Evaluator/AddLevelMismatch", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})

		ct1Down, err := tc.eval.ModSwitchNew(ct1)
		require.NoError(t, err)

		_, err = tc.eval.AddNew(ct0, ct1Down)
		require.ErrorIs(t, err, ErrLevelMismatch)
	})
}

func testEvaluatorMul(tc *testContext, t *testing.T) {

	params := tc.params

	t.Run(testName("Evaluator/Mul", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})

		ctMul, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)
		require.Equal(t, 2, ctMul.Degree())
		require.Equal(t, ct0.Level, ctMul.Level)
		tc.printNoise(t, "Mul", ctMul)

		// a degree-2 ciphertext decrypts directly
		ptDec, noiseOverflow := tc.dec.DecryptNew(ctMul)
		require.False(t, noiseOverflow)

		have := make([]uint64, 1)
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, []uint64{15}, have)
	})

	t.Run(testName("Evaluator/MulRelin", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})

		ctMul, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)

		ctRelin, err := tc.eval.RelinearizeNew(ctMul, tc.rlk)
		require.NoError(t, err)
		require.Equal(t, 1, ctRelin.Degree())
		require.Greater(t, ctRelin.Noise, ctMul.Noise)
		tc.printNoise(t, "Relinearize", ctRelin)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctRelin)
		require.False(t, noiseOverflow)

		have := make([]uint64, 1)
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, []uint64{15}, have)
	})

	t.Run(testName("Evaluator/MulVec", params), func(t *testing.T) {

		values0 := []uint64{1, 2}
		values1 := []uint64{3, 1}
		want := mulVecModT(values0, values1, params.N(), params.PlaintextModulus())

		_, ct0 := tc.newTestVectors(t, values0)
		_, ct1 := tc.newTestVectors(t, values1)

		ctMul, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)

		ctRelin, err := tc.eval.RelinearizeNew(ctMul, tc.rlk)
		require.NoError(t, err)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctRelin)
		require.False(t, noiseOverflow)

		have := make([]uint64, params.N())
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, want, have)
	})

	t.Run(testName("Evaluator/MulErrors", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})

		// operands must be at the same level
		ct1Down, err := tc.eval.ModSwitchNew(ct1)
		require.NoError(t, err)
		_, err = tc.eval.MulNew(ct0, ct1Down)
		require.ErrorIs(t, err, ErrLevelMismatch)

		// operands must be degree-1
		ctMul, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)
		_, err = tc.eval.MulNew(ctMul, ct0)
		require.Error(t, err)

		// relinearization requires a degree-2 ciphertext
		_, err = tc.eval.RelinearizeNew(ct0, tc.rlk)
		require.Error(t, err)
	})

	t.Run(testName("Evaluator/MulLevelExhausted", params), func(t *testing.T) {

		_, ct := tc.newTestVectors(t, []uint64{3})

		var err error
		for ct.Level > 0 {
			ct, err = tc.eval.ModSwitchNew(ct)
			require.NoError(t, err)
		}

		_, err = tc.eval.MulNew(ct, ct)
		require.ErrorIs(t, err, ErrLevelExhausted)
	})
}

func testEvaluatorModSwitch(tc *testContext, t *testing.T) {

	params := tc.params

	t.Run(testName("Evaluator/ModSwitch", params), func(t *testing.T) {

		values := []uint64{3, 5, 7}
		_, ct := tc.newTestVectors(t, values)

		ctDown, err := tc.eval.ModSwitchNew(ct)
		require.NoError(t, err)
		require.Equal(t, ct.Level-1, ctDown.Level)
		tc.printNoise(t, "ModSwitch", ctDown)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctDown)
		require.False(t, noiseOverflow)

		have := make([]uint64, len(values))
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, values, have)
	})

	t.Run(testName("Evaluator/ModSwitchAfterMul", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})

		ctMul, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)

		ctRelin, err := tc.eval.RelinearizeNew(ctMul, tc.rlk)
		require.NoError(t, err)

		ctDown, err := tc.eval.ModSwitchNew(ctRelin)
		require.NoError(t, err)
		tc.printNoise(t, "Mul->Relinearize->ModSwitch", ctDown)

		ptDec, noiseOverflow := tc.dec.DecryptNew(ctDown)
		require.False(t, noiseOverflow)

		have := make([]uint64, 1)
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, []uint64{15}, have)
	})

	t.Run(testName("Evaluator/ModSwitchExhausted", params), func(t *testing.T) {

		_, ct := tc.newTestVectors(t, []uint64{3})

		var err error
		for ct.Level > 0 {
			ct, err = tc.eval.ModSwitchNew(ct)
			require.NoError(t, err)
		}

		_, err = tc.eval.ModSwitchNew(ct)
		require.ErrorIs(t, err, ErrLevelExhausted)
	})

	t.Run(testName("Evaluator/FullDepth", params), func(t *testing.T) {

		values := []uint64{2}
		want := values[0]

		_, ct := tc.newTestVectors(t, values)

		// square and switch down until the chain is exhausted
		for ct.Level > 0 {

			ctMul, err := tc.eval.MulNew(ct, ct)
			require.NoError(t, err)

			ctRelin, err := tc.eval.RelinearizeNew(ctMul, tc.rlk)
			require.NoError(t, err)

			ct, err = tc.eval.ModSwitchNew(ctRelin)
			require.NoError(t, err)

			want = (want * want) % params.PlaintextModulus()
			tc.printNoise(t, "Square->Relinearize->ModSwitch", ct)
		}

		ptDec, noiseOverflow := tc.dec.DecryptNew(ct)
		require.False(t, noiseOverflow)

		have := make([]uint64, 1)
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, []uint64{want}, have)
	})
}

func testNoiseBudget(tc *testContext, t *testing.T) {

	params := tc.params

	t.Run(testName("NoiseBudget/Monotone", params), func(t *testing.T) {

		_, ct0 := tc.newTestVectors(t, []uint64{3})
		_, ct1 := tc.newTestVectors(t, []uint64{5})

		budgetFresh := tc.eval.NoiseBudget(ct0)
		require.Greater(t, budgetFresh, 0.0)

		ctSum, err := tc.eval.AddNew(ct0, ct1)
		require.NoError(t, err)
		require.LessOrEqual(t, tc.eval.NoiseBudget(ctSum), budgetFresh)

		ctMul, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)
		require.Less(t, tc.eval.NoiseBudget(ctMul), budgetFresh)

		ctRelin, err := tc.eval.RelinearizeNew(ctMul, tc.rlk)
		require.NoError(t, err)
		require.LessOrEqual(t, tc.eval.NoiseBudget(ctRelin), tc.eval.NoiseBudget(ctMul))

		ctDown, err := tc.eval.ModSwitchNew(ctRelin)
		require.NoError(t, err)
		require.LessOrEqual(t, tc.eval.NoiseBudget(ctDown), tc.eval.NoiseBudget(ctRelin))
	})

	t.Run(testName("NoiseBudget/Overflow", params), func(t *testing.T) {

		_, ct := tc.newTestVectors(t, []uint64{1})

		// noise doubles on each self-addition: the budget loses one bit per
		// round and must eventually cross zero
		var err error
		for i := 0; i < 70 && tc.eval.NoiseBudget(ct) > 0; i++ {
			ct, err = tc.eval.AddNew(ct, ct)
			require.NoError(t, err)
		}
		require.LessOrEqual(t, tc.eval.NoiseBudget(ct), 0.0)

		ct, err = tc.eval.AddNew(ct, ct)
		require.NoError(t, err)

		_, noiseOverflow := tc.dec.DecryptNew(ct)
		require.True(t, noiseOverflow)
	})
}

func testCodec(tc *testContext, t *testing.T) {

	params := tc.params
	codec := NewCodec(params)

	t.Run(testName("Codec/SecretKey", params), func(t *testing.T) {

		b := buffer.NewBufferSize(0)
		_, err := codec.WriteSecretKey(b, tc.sk)
		require.NoError(t, err)

		sk, err := codec.ReadSecretKeyNew(b)
		require.NoError(t, err)

		require.Equal(t, len(tc.sk.Value), len(sk.Value))
		for i := range sk.Value {
			require.True(t, tc.sk.Value[i].Equal(sk.Value[i]))
		}
	})

	t.Run(testName("Codec/PublicKey", params), func(t *testing.T) {

		b := buffer.NewBufferSize(0)
		_, err := codec.WritePublicKey(b, tc.pk)
		require.NoError(t, err)

		pk, err := codec.ReadPublicKeyNew(b)
		require.NoError(t, err)

		require.True(t, tc.pk.Value[0].Equal(pk.Value[0]))
		require.True(t, tc.pk.Value[1].Equal(pk.Value[1]))
	})

	t.Run(testName("Codec/RelinearizationKey", params), func(t *testing.T) {

		b := buffer.NewBufferSize(0)
		_, err := codec.WriteRelinearizationKey(b, tc.rlk)
		require.NoError(t, err)

		rlk, err := codec.ReadRelinearizationKeyNew(b)
		require.NoError(t, err)

		require.Equal(t, tc.rlk.Base, rlk.Base)
		require.Equal(t, len(tc.rlk.Keys), len(rlk.Keys))
		for i := range rlk.Keys {
			require.Equal(t, len(tc.rlk.Keys[i]), len(rlk.Keys[i]))
			for j := range rlk.Keys[i] {
				require.True(t, tc.rlk.Keys[i][j][0].Equal(rlk.Keys[i][j][0]))
				require.True(t, tc.rlk.Keys[i][j][1].Equal(rlk.Keys[i][j][1]))
			}
		}
	})

	t.Run(testName("Codec/Ciphertext", params), func(t *testing.T) {

		values := []uint64{3, 5}
		pt, ct := tc.newTestVectors(t, values)

		b := buffer.NewBufferSize(0)
		_, err := codec.WritePlaintext(b, pt)
		require.NoError(t, err)
		_, err = codec.WriteCiphertext(b, ct)
		require.NoError(t, err)

		ptRec, err := codec.ReadPlaintextNew(b)
		require.NoError(t, err)
		require.Equal(t, pt.Level, ptRec.Level)
		require.True(t, pt.Value.Equal(ptRec.Value))

		ctRec, err := codec.ReadCiphertextNew(b)
		require.NoError(t, err)
		require.Equal(t, ct.Level, ctRec.Level)
		require.Equal(t, ct.Noise, ctRec.Noise)

		// the deserialized ciphertext is still decryptable
		ptDec, noiseOverflow := tc.dec.DecryptNew(ctRec)
		require.False(t, noiseOverflow)

		have := make([]uint64, len(values))
		require.NoError(t, tc.ecd.Decode(ptDec, have))
		require.Equal(t, values, have)
	})

	t.Run(testName("Codec/ParameterMismatch", params), func(t *testing.T) {

		_, ct := tc.newTestVectors(t, []uint64{3})

		b := buffer.NewBufferSize(0)
		_, err := codec.WriteCiphertext(b, ct)
		require.NoError(t, err)

		otherLiteral := testParametersTiny
		otherLiteral.PlaintextModulus = 5
		otherParams, err := NewParametersFromLiteral(otherLiteral)
		require.NoError(t, err)

		_, err = NewCodec(otherParams).ReadCiphertextNew(b)
		require.ErrorIs(t, err, ErrParameterMismatch)
	})

	t.Run(testName("Codec/TruncatedPolynomial", params), func(t *testing.T) {

		_, ct := tc.newTestVectors(t, []uint64{3})

		// a component with fewer coefficients than the ring degree must be
		// rejected at deserialization, not crash a later operation
		ct = ct.CopyNew()
		ct.Value[1] = ring.NewPoly(params.N() / 2)

		b := buffer.NewBufferSize(0)
		_, err := codec.WriteCiphertext(b, ct)
		require.NoError(t, err)

		_, err = codec.ReadCiphertextNew(b)
		require.ErrorIs(t, err, ErrParameterMismatch)
	})

	t.Run(testName("Codec/InvalidMagic", params), func(t *testing.T) {

		_, ct := tc.newTestVectors(t, []uint64{3})

		b := buffer.NewBufferSize(0)
		_, err := codec.WriteCiphertext(b, ct)
		require.NoError(t, err)

		data := b.Bytes()
		data[0] ^= 0xff

		_, err = codec.ReadCiphertextNew(buffer.NewBuffer(data))
		require.ErrorIs(t, err, ErrParameterMismatch)
	})
}
